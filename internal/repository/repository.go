// Package repository implements the application, lender, submission and
// settings stores on PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mca-workers/internal/models"
)

var ErrNotFound = errors.New("NOT_FOUND")

type ApplicationStore interface {
	Create(ctx context.Context, profile models.ApplicantProfile, status models.ApplicationStatus) (*models.Application, error)
	List(ctx context.Context) ([]models.Application, error)
	Get(ctx context.Context, id string) (*models.Application, error)
	Update(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, error)
	Delete(ctx context.Context, id string) error
}

type LenderStore interface {
	Create(ctx context.Context, lender models.Lender) (*models.Lender, error)
	List(ctx context.Context) ([]models.Lender, error)
	Get(ctx context.Context, id string) (*models.Lender, error)
	Update(ctx context.Context, id string, lender models.Lender) (*models.Lender, error)
	Delete(ctx context.Context, id string) error
}

type SubmissionStore interface {
	CreateMany(ctx context.Context, applicationID string, lenderIDs []string) ([]models.LenderSubmission, error)
	ListByApplication(ctx context.Context, applicationID string) ([]models.SubmissionWithLender, error)
	Update(ctx context.Context, id string, patch models.SubmissionPatch) (*models.LenderSubmission, error)
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// setBuilder accumulates "column = $n" assignments for partial updates.
type setBuilder struct {
	cols []string
	args []interface{}
}

func (b *setBuilder) add(column string, value interface{}) {
	b.args = append(b.args, value)
	b.cols = append(b.cols, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) empty() bool { return len(b.cols) == 0 }

// sql returns "UPDATE table SET ... WHERE id = $n RETURNING returning".
func (b *setBuilder) sql(table, id, returning string) (string, []interface{}) {
	args := append(b.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		table, strings.Join(b.cols, ", "), len(args), returning)
	return query, args
}
