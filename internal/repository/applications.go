package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"mca-workers/internal/models"
)

const applicationColumns = `id, business_name, owner_name, email, phone, address, ein,
	business_type, industry, years_in_business, number_of_employees,
	annual_revenue, monthly_revenue, monthly_deposits, existing_debt,
	credit_score, requested_amount, documents, status, created_at, updated_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, p models.ApplicantProfile, status models.ApplicationStatus) (*models.Application, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO applications (
			id, business_name, owner_name, email, phone, address, ein,
			business_type, industry, years_in_business, number_of_employees,
			annual_revenue, monthly_revenue, monthly_deposits, existing_debt,
			credit_score, requested_amount, documents, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
		RETURNING `+applicationColumns,
		uuid.NewString(), p.BusinessName, p.OwnerName, p.Email, p.Phone, p.Address, p.EIN,
		p.BusinessType, p.Industry, p.YearsInBusiness, p.NumberOfEmployees,
		p.AnnualRevenue, p.MonthlyRevenue, p.MonthlyDeposits, p.ExistingDebt,
		p.CreditScore, p.RequestedAmount, pq.Array(p.Documents), string(status),
	)

	app, err := scanApplication(row)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context) ([]models.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) Get(ctx context.Context, id string) (*models.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", id, err)
	}
	return app, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, error) {
	b := &setBuilder{}
	addString(b, "business_name", patch.BusinessName)
	addString(b, "owner_name", patch.OwnerName)
	addString(b, "email", patch.Email)
	addString(b, "phone", patch.Phone)
	addString(b, "address", patch.Address)
	addString(b, "ein", patch.EIN)
	addString(b, "business_type", patch.BusinessType)
	addString(b, "industry", patch.Industry)
	addFloat(b, "years_in_business", patch.YearsInBusiness)
	addInt(b, "number_of_employees", patch.NumberOfEmployees)
	addFloat(b, "annual_revenue", patch.AnnualRevenue)
	addFloat(b, "monthly_revenue", patch.MonthlyRevenue)
	addFloat(b, "monthly_deposits", patch.MonthlyDeposits)
	addFloat(b, "existing_debt", patch.ExistingDebt)
	addInt(b, "credit_score", patch.CreditScore)
	addFloat(b, "requested_amount", patch.RequestedAmount)
	if patch.Documents != nil {
		b.add("documents", pq.Array(patch.Documents))
	}
	if patch.Status != nil {
		b.add("status", string(*patch.Status))
	}

	if b.empty() {
		return r.Get(ctx, id)
	}

	query, args := b.sql("applications", id, applicationColumns)
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update application %s: %w", id, err)
	}
	return app, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application %s: %w", id, err)
	}
	return expectOneRow(res)
}

func scanApplication(s scanner) (*models.Application, error) {
	var app models.Application
	var status string
	err := s.Scan(
		&app.ID, &app.BusinessName, &app.OwnerName, &app.Email, &app.Phone, &app.Address, &app.EIN,
		&app.BusinessType, &app.Industry, &app.YearsInBusiness, &app.NumberOfEmployees,
		&app.AnnualRevenue, &app.MonthlyRevenue, &app.MonthlyDeposits, &app.ExistingDebt,
		&app.CreditScore, &app.RequestedAmount, pq.Array(&app.Documents), &status,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Status = models.ApplicationStatus(status)
	return &app, nil
}

func addString(b *setBuilder, col string, v *string) {
	if v != nil {
		b.add(col, *v)
	}
}

func addFloat(b *setBuilder, col string, v *float64) {
	if v != nil {
		b.add(col, *v)
	}
}

func addInt(b *setBuilder, col string, v *int) {
	if v != nil {
		b.add(col, *v)
	}
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
