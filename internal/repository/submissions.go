package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"mca-workers/internal/common/database"
	"mca-workers/internal/models"
)

const submissionColumns = `id, application_id, lender_id, status, response, offered_amount,
	factor_rate, terms, response_date, notes, created_at, updated_at`

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateMany inserts one pending submission per lender in a single
// transaction, preserving lenderIDs order.
func (r *SubmissionRepository) CreateMany(ctx context.Context, applicationID string, lenderIDs []string) ([]models.LenderSubmission, error) {
	subs := make([]models.LenderSubmission, 0, len(lenderIDs))
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, lenderID := range lenderIDs {
			row := tx.QueryRowContext(ctx, `
				INSERT INTO lender_submissions (id, application_id, lender_id, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, NOW(), NOW())
				RETURNING `+submissionColumns,
				uuid.NewString(), applicationID, lenderID, string(models.SubmissionStatusPending),
			)
			sub, err := scanSubmission(row)
			if err != nil {
				return fmt.Errorf("insert submission for lender %s: %w", lenderID, err)
			}
			subs = append(subs, *sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubmissionRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.SubmissionWithLender, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.application_id, s.lender_id, s.status, s.response, s.offered_amount,
		       s.factor_rate, s.terms, s.response_date, s.notes, s.created_at, s.updated_at,
		       l.id, l.name, l.contact_email, l.phone, l.status, l.rating, l.total_applications,
		       l.approval_rate, l.min_amount, l.max_amount, l.min_credit_score, l.max_credit_score,
		       l.min_time_in_business, l.min_monthly_revenue, l.industries, l.factor_rate,
		       l.payback_term, l.approval_time, l.features, l.created_at, l.updated_at
		FROM lender_submissions s
		JOIN lenders l ON l.id = s.lender_id
		WHERE s.application_id = $1
		ORDER BY s.created_at`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", applicationID, err)
	}
	defer rows.Close()

	var out []models.SubmissionWithLender
	for rows.Next() {
		var sw models.SubmissionWithLender
		var subStatus, lenderStatus string
		var response, terms, notes sql.NullString
		var offered, factor sql.NullFloat64
		var responseDate sql.NullTime
		l := &sw.Lender
		err := rows.Scan(
			&sw.ID, &sw.ApplicationID, &sw.LenderID, &subStatus, &response, &offered,
			&factor, &terms, &responseDate, &notes, &sw.CreatedAt, &sw.UpdatedAt,
			&l.ID, &l.Name, &l.ContactEmail, &l.Phone, &lenderStatus, &l.Rating, &l.TotalApplications,
			&l.ApprovalRate, &l.MinAmount, &l.MaxAmount, &l.MinCreditScore, &l.MaxCreditScore,
			&l.MinTimeInBusiness, &l.MinMonthlyRevenue, pq.Array(&l.Industries), &l.FactorRate,
			&l.PaybackTerm, &l.ApprovalTime, pq.Array(&l.Features), &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sw.Status = models.SubmissionStatus(subStatus)
		l.Status = models.LenderStatus(lenderStatus)
		applyNullables(&sw.LenderSubmission, response, terms, notes, offered, factor, responseDate)
		out = append(out, sw)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) Update(ctx context.Context, id string, patch models.SubmissionPatch) (*models.LenderSubmission, error) {
	b := &setBuilder{}
	if patch.Status != nil {
		b.add("status", string(*patch.Status))
	}
	addString(b, "response", patch.Response)
	addFloat(b, "offered_amount", patch.OfferedAmount)
	addFloat(b, "factor_rate", patch.FactorRate)
	addString(b, "terms", patch.Terms)
	if patch.ResponseDate != nil {
		b.add("response_date", *patch.ResponseDate)
	}
	addString(b, "notes", patch.Notes)

	var row *sql.Row
	if b.empty() {
		row = r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM lender_submissions WHERE id = $1`, id)
	} else {
		query, args := b.sql("lender_submissions", id, submissionColumns)
		row = r.db.QueryRowContext(ctx, query, args...)
	}

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update submission %s: %w", id, err)
	}
	return sub, nil
}

func scanSubmission(s scanner) (*models.LenderSubmission, error) {
	var sub models.LenderSubmission
	var status string
	var response, terms, notes sql.NullString
	var offered, factor sql.NullFloat64
	var responseDate sql.NullTime
	err := s.Scan(
		&sub.ID, &sub.ApplicationID, &sub.LenderID, &status, &response, &offered,
		&factor, &terms, &responseDate, &notes, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.Status = models.SubmissionStatus(status)
	applyNullables(&sub, response, terms, notes, offered, factor, responseDate)
	return &sub, nil
}

func applyNullables(sub *models.LenderSubmission, response, terms, notes sql.NullString, offered, factor sql.NullFloat64, responseDate sql.NullTime) {
	if response.Valid {
		sub.Response = &response.String
	}
	if terms.Valid {
		sub.Terms = &terms.String
	}
	if notes.Valid {
		sub.Notes = &notes.String
	}
	if offered.Valid {
		sub.OfferedAmount = &offered.Float64
	}
	if factor.Valid {
		sub.FactorRate = &factor.Float64
	}
	if responseDate.Valid {
		sub.ResponseDate = &responseDate.Time
	}
}
