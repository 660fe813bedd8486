// internal/workers/data-access/query-postgresql/handler.go
package querypostgresql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/workers/data-access/query-postgresql/queries"
)

const TaskType = "query-postgresql"

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	errors *errors.ErrorHandler
}

func NewHandler(cfg *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: cfg,
		db:     db,
		logger: log,
		errors: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.HandleContext(context.Background(), client, job)
}

func (h *Handler) HandleContext(parent context.Context, client worker.JobClient, job entities.Job) {
	done := metrics.TrackJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(parent, h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, GetInputSchema(), &input); err != nil {
		done(h.errors.HandleJobError(ctx, client, job, err).Code)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		done(h.errors.HandleJobError(ctx, client, job, err).Code)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		done(string(errors.ErrCodeEngineUnavailable))
		return
	}
	done("")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	queryType := queries.Normalize(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, errors.NewInvalidQueryTypeError(input.QueryType)
	}

	params := queries.Params{
		ApplicationID: input.ApplicationID,
		Status:        input.Status,
		Limit:         input.Limit,
	}
	if params.Limit <= 0 || params.Limit > h.config.MaxRows {
		params.Limit = h.config.MaxRows
	}

	start := time.Now()
	data, rowCount, err := queries.Execute(ctx, h.db, queryType, params)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, h.queryError(ctx, string(queryType), input, err)
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType":  string(queryType),
		"rowCount":   rowCount,
		"durationMs": elapsed,
	})
	return &Output{Data: data, RowCount: rowCount, QueryExecutionTime: elapsed}, nil
}

func (h *Handler) queryError(ctx context.Context, queryType string, input *Input, err error) error {
	switch {
	case stderrors.Is(err, queries.ErrMissingParam):
		return errors.NewInputValidationError("applicationId is required for " + queryType)
	case stderrors.Is(err, queries.ErrNotFound):
		return errors.NewNotFoundError(errors.ErrCodeApplicationNotFound, input.ApplicationID)
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.NewQueryTimeoutError(queryType)
	case stderrors.Is(err, driver.ErrBadConn):
		return errors.NewDatabaseConnectionFailedError(err)
	default:
		return errors.NewQueryExecutionFailedError(queryType, err)
	}
}
