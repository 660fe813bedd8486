// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mca-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
	// ErrNotFound is returned by single-record queries.
	ErrNotFound = errors.New("record not found")
)

// Params are the optional arguments a query may read.
type Params struct {
	ApplicationID string
	Status        string
	Limit         int
}

// QueryFunc returns the result data and its row count.
type QueryFunc func(ctx context.Context, db *sql.DB, params Params) (interface{}, int, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeApplicationList:    ApplicationList,
	models.QueryTypeApplicationDetails: ApplicationDetails,
	models.QueryTypeLenderList:         LenderList,
	models.QueryTypeLenderSubmissions:  LenderSubmissions,
}

// Normalize accepts both "lender-list" and "lender_list".
func Normalize(queryType string) models.QueryType {
	return models.QueryType(strings.ReplaceAll(strings.TrimSpace(queryType), "-", "_"))
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params Params) (interface{}, int, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
