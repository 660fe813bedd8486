// internal/workers/data-access/query-postgresql/queries/lenders.go
package queries

import (
	"context"
	"database/sql"

	"mca-workers/internal/models"
	"mca-workers/internal/repository"
)

func LenderList(ctx context.Context, db *sql.DB, params Params) (interface{}, int, error) {
	lenders, err := repository.NewLenderRepository(db).List(ctx)
	if err != nil {
		return nil, 0, err
	}

	if params.Status != "" {
		filtered := lenders[:0]
		for _, l := range lenders {
			if string(l.Status) == params.Status {
				filtered = append(filtered, l)
			}
		}
		lenders = filtered
	}
	lenders = limit(lenders, params.Limit)
	if lenders == nil {
		lenders = []models.Lender{}
	}
	return lenders, len(lenders), nil
}

func LenderSubmissions(ctx context.Context, db *sql.DB, params Params) (interface{}, int, error) {
	if params.ApplicationID == "" {
		return nil, 0, ErrMissingParam
	}

	subs, err := repository.NewSubmissionRepository(db).ListByApplication(ctx, params.ApplicationID)
	if err != nil {
		return nil, 0, err
	}
	if subs == nil {
		subs = []models.SubmissionWithLender{}
	}
	return subs, len(subs), nil
}
