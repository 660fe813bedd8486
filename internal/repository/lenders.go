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

const lenderColumns = `id, name, contact_email, phone, status, rating, total_applications,
	approval_rate, min_amount, max_amount, min_credit_score, max_credit_score,
	min_time_in_business, min_monthly_revenue, industries, factor_rate,
	payback_term, approval_time, features, created_at, updated_at`

type LenderRepository struct {
	db *sql.DB
}

func NewLenderRepository(db *sql.DB) *LenderRepository {
	return &LenderRepository{db: db}
}

func (r *LenderRepository) Create(ctx context.Context, l models.Lender) (*models.Lender, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO lenders (
			id, name, contact_email, phone, status, rating, total_applications,
			approval_rate, min_amount, max_amount, min_credit_score, max_credit_score,
			min_time_in_business, min_monthly_revenue, industries, factor_rate,
			payback_term, approval_time, features, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
		RETURNING `+lenderColumns,
		uuid.NewString(), l.Name, l.ContactEmail, l.Phone, string(l.Status), l.Rating, l.TotalApplications,
		l.ApprovalRate, l.MinAmount, l.MaxAmount, l.MinCreditScore, l.MaxCreditScore,
		l.MinTimeInBusiness, l.MinMonthlyRevenue, pq.Array(l.Industries), l.FactorRate,
		l.PaybackTerm, l.ApprovalTime, pq.Array(l.Features),
	)
	lender, err := scanLender(row)
	if err != nil {
		return nil, fmt.Errorf("insert lender: %w", err)
	}
	return lender, nil
}

func (r *LenderRepository) List(ctx context.Context) ([]models.Lender, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+lenderColumns+` FROM lenders ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list lenders: %w", err)
	}
	defer rows.Close()

	var lenders []models.Lender
	for rows.Next() {
		l, err := scanLender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lender: %w", err)
		}
		lenders = append(lenders, *l)
	}
	return lenders, rows.Err()
}

func (r *LenderRepository) Get(ctx context.Context, id string) (*models.Lender, error) {
	l, err := scanLender(r.db.QueryRowContext(ctx, `SELECT `+lenderColumns+` FROM lenders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lender %s: %w", id, err)
	}
	return l, nil
}

// Update replaces every editable column of the lender.
func (r *LenderRepository) Update(ctx context.Context, id string, l models.Lender) (*models.Lender, error) {
	b := &setBuilder{}
	b.add("name", l.Name)
	b.add("contact_email", l.ContactEmail)
	b.add("phone", l.Phone)
	b.add("status", string(l.Status))
	b.add("rating", l.Rating)
	b.add("total_applications", l.TotalApplications)
	b.add("approval_rate", l.ApprovalRate)
	b.add("min_amount", l.MinAmount)
	b.add("max_amount", l.MaxAmount)
	b.add("min_credit_score", l.MinCreditScore)
	b.add("max_credit_score", l.MaxCreditScore)
	b.add("min_time_in_business", l.MinTimeInBusiness)
	b.add("min_monthly_revenue", l.MinMonthlyRevenue)
	b.add("industries", pq.Array(l.Industries))
	b.add("factor_rate", l.FactorRate)
	b.add("payback_term", l.PaybackTerm)
	b.add("approval_time", l.ApprovalTime)
	b.add("features", pq.Array(l.Features))

	query, args := b.sql("lenders", id, lenderColumns)
	lender, err := scanLender(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update lender %s: %w", id, err)
	}
	return lender, nil
}

func (r *LenderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lenders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lender %s: %w", id, err)
	}
	return expectOneRow(res)
}

func scanLender(s scanner) (*models.Lender, error) {
	var l models.Lender
	var status string
	err := s.Scan(
		&l.ID, &l.Name, &l.ContactEmail, &l.Phone, &status, &l.Rating, &l.TotalApplications,
		&l.ApprovalRate, &l.MinAmount, &l.MaxAmount, &l.MinCreditScore, &l.MaxCreditScore,
		&l.MinTimeInBusiness, &l.MinMonthlyRevenue, pq.Array(&l.Industries), &l.FactorRate,
		&l.PaybackTerm, &l.ApprovalTime, pq.Array(&l.Features), &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = models.LenderStatus(status)
	return &l, nil
}
