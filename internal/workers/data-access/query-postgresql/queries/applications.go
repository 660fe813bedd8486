// internal/workers/data-access/query-postgresql/queries/applications.go
package queries

import (
	"context"
	"database/sql"
	"errors"

	"mca-workers/internal/models"
	"mca-workers/internal/repository"
)

// ApplicationDetailsResult is one application with its lender submissions.
type ApplicationDetailsResult struct {
	Application models.Application            `json:"application"`
	Submissions []models.SubmissionWithLender `json:"submissions"`
}

// ApplicationList returns applications newest first, optionally filtered
// by status.
func ApplicationList(ctx context.Context, db *sql.DB, params Params) (interface{}, int, error) {
	apps, err := repository.NewApplicationRepository(db).List(ctx)
	if err != nil {
		return nil, 0, err
	}

	if params.Status != "" {
		filtered := apps[:0]
		for _, a := range apps {
			if string(a.Status) == params.Status {
				filtered = append(filtered, a)
			}
		}
		apps = filtered
	}
	apps = limit(apps, params.Limit)
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, len(apps), nil
}

func ApplicationDetails(ctx context.Context, db *sql.DB, params Params) (interface{}, int, error) {
	if params.ApplicationID == "" {
		return nil, 0, ErrMissingParam
	}

	app, err := repository.NewApplicationRepository(db).Get(ctx, params.ApplicationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	subs, err := repository.NewSubmissionRepository(db).ListByApplication(ctx, params.ApplicationID)
	if err != nil {
		return nil, 0, err
	}
	if subs == nil {
		subs = []models.SubmissionWithLender{}
	}
	return ApplicationDetailsResult{Application: *app, Submissions: subs}, 1, nil
}
