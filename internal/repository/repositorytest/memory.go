// Package repositorytest provides in-memory stores for handler tests.
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mca-workers/internal/models"
	"mca-workers/internal/repository"
)

var Epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Applications is an in-memory repository.ApplicationStore. Err, when set,
// is returned by every call.
type Applications struct {
	mu   sync.Mutex
	seq  int
	rows map[string]models.Application
	Err  error
}

func NewApplications(apps ...models.Application) *Applications {
	s := &Applications{rows: map[string]models.Application{}}
	for _, a := range apps {
		s.rows[a.ID] = a
	}
	return s
}

func (s *Applications) Create(_ context.Context, p models.ApplicantProfile, status models.ApplicationStatus) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.seq++
	app := models.Application{
		ID:               fmt.Sprintf("app-%d", s.seq),
		ApplicantProfile: p,
		Status:           status,
		CreatedAt:        Epoch,
		UpdatedAt:        Epoch,
	}
	s.rows[app.ID] = app
	return &app, nil
}

func (s *Applications) List(context.Context) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Application, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Applications) Get(_ context.Context, id string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	app, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &app, nil
}

func (s *Applications) Update(_ context.Context, id string, patch models.ApplicationPatch) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	app, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	applyApplicationPatch(&app, patch)
	app.UpdatedAt = Epoch.Add(time.Hour)
	s.rows[id] = app
	return &app, nil
}

func (s *Applications) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func applyApplicationPatch(app *models.Application, p models.ApplicationPatch) {
	setS := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setI := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setS(&app.BusinessName, p.BusinessName)
	setS(&app.OwnerName, p.OwnerName)
	setS(&app.Email, p.Email)
	setS(&app.Phone, p.Phone)
	setS(&app.Address, p.Address)
	setS(&app.EIN, p.EIN)
	setS(&app.BusinessType, p.BusinessType)
	setS(&app.Industry, p.Industry)
	setF(&app.YearsInBusiness, p.YearsInBusiness)
	setI(&app.NumberOfEmployees, p.NumberOfEmployees)
	setF(&app.AnnualRevenue, p.AnnualRevenue)
	setF(&app.MonthlyRevenue, p.MonthlyRevenue)
	setF(&app.MonthlyDeposits, p.MonthlyDeposits)
	setF(&app.ExistingDebt, p.ExistingDebt)
	setI(&app.CreditScore, p.CreditScore)
	setF(&app.RequestedAmount, p.RequestedAmount)
	if p.Documents != nil {
		app.Documents = p.Documents
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
}

// Lenders is an in-memory repository.LenderStore listing by name.
type Lenders struct {
	mu   sync.Mutex
	seq  int
	rows map[string]models.Lender
	Err  error
	// Lists counts List calls.
	Lists int
}

func NewLenders(lenders ...models.Lender) *Lenders {
	s := &Lenders{rows: map[string]models.Lender{}}
	for _, l := range lenders {
		s.rows[l.ID] = l
	}
	return s
}

func (s *Lenders) Create(_ context.Context, l models.Lender) (*models.Lender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.seq++
	l.ID = fmt.Sprintf("lender-%d", s.seq)
	l.CreatedAt, l.UpdatedAt = Epoch, Epoch
	s.rows[l.ID] = l
	return &l, nil
}

func (s *Lenders) List(context.Context) ([]models.Lender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lists++
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Lender, 0, len(s.rows))
	for _, l := range s.rows {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Lenders) Get(_ context.Context, id string) (*models.Lender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	l, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (s *Lenders) Update(_ context.Context, id string, l models.Lender) (*models.Lender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	prev, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	l.ID, l.CreatedAt, l.UpdatedAt = id, prev.CreatedAt, Epoch.Add(time.Hour)
	s.rows[id] = l
	return &l, nil
}

func (s *Lenders) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Submissions is an in-memory repository.SubmissionStore. ListByApplication
// joins against Lenders when set.
type Submissions struct {
	mu      sync.Mutex
	seq     int
	rows    []models.LenderSubmission
	Lenders *Lenders
	Err     error
}

func NewSubmissions(lenders *Lenders) *Submissions {
	return &Submissions{Lenders: lenders}
}

func (s *Submissions) CreateMany(_ context.Context, applicationID string, lenderIDs []string) ([]models.LenderSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.LenderSubmission, 0, len(lenderIDs))
	for _, lid := range lenderIDs {
		s.seq++
		sub := models.LenderSubmission{
			ID:            fmt.Sprintf("sub-%d", s.seq),
			ApplicationID: applicationID,
			LenderID:      lid,
			Status:        models.SubmissionStatusPending,
			CreatedAt:     Epoch,
			UpdatedAt:     Epoch,
		}
		s.rows = append(s.rows, sub)
		out = append(out, sub)
	}
	return out, nil
}

func (s *Submissions) ListByApplication(ctx context.Context, applicationID string) ([]models.SubmissionWithLender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.SubmissionWithLender
	for _, sub := range s.rows {
		if sub.ApplicationID != applicationID {
			continue
		}
		row := models.SubmissionWithLender{LenderSubmission: sub}
		if s.Lenders != nil {
			if l, err := s.Lenders.Get(ctx, sub.LenderID); err == nil {
				row.Lender = *l
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Submissions) Update(_ context.Context, id string, p models.SubmissionPatch) (*models.LenderSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		sub := &s.rows[i]
		if p.Status != nil {
			sub.Status = *p.Status
		}
		if p.Response != nil {
			sub.Response = p.Response
		}
		if p.OfferedAmount != nil {
			sub.OfferedAmount = p.OfferedAmount
		}
		if p.FactorRate != nil {
			sub.FactorRate = p.FactorRate
		}
		if p.Terms != nil {
			sub.Terms = p.Terms
		}
		if p.ResponseDate != nil {
			sub.ResponseDate = p.ResponseDate
		}
		if p.Notes != nil {
			sub.Notes = p.Notes
		}
		sub.UpdatedAt = Epoch.Add(time.Hour)
		out := *sub
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

// Settings is an in-memory repository.SettingsStore.
type Settings struct {
	mu   sync.Mutex
	rows map[string]string
	Err  error
}

func NewSettings() *Settings {
	return &Settings{rows: map[string]string{}}
}

func (s *Settings) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	v, ok := s.rows[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (s *Settings) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.rows[key] = value
	return nil
}

func (s *Settings) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.rows, key)
	return nil
}

var (
	_ repository.ApplicationStore = (*Applications)(nil)
	_ repository.LenderStore      = (*Lenders)(nil)
	_ repository.SubmissionStore  = (*Submissions)(nil)
	_ repository.SettingsStore    = (*Settings)(nil)
)
