// internal/workers/application/update-application-record/handler.go
package updateapplicationrecord

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/models"
	"mca-workers/internal/repository"
)

const TaskType = "update-application-record"

type Indexer interface {
	IndexApplication(ctx context.Context, app models.Application) error
}

type Handler struct {
	config  *Config
	store   repository.ApplicationStore
	indexer Indexer
	logger  logger.Logger
	errors  *errors.ErrorHandler
}

func NewHandler(cfg *Config, store repository.ApplicationStore, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  cfg,
		store:   store,
		indexer: indexer,
		logger:  log,
		errors:  errors.NewErrorHandler(log),
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
	if input.ApplicationID == "" {
		return nil, errors.NewInputValidationError("applicationId is required")
	}
	if s := input.Patch.Status; s != nil && !s.Valid() {
		return nil, errors.NewInvalidStatusError(string(*s))
	}

	app, err := h.store.Update(ctx, input.ApplicationID, input.Patch)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewNotFoundError(errors.ErrCodeApplicationNotFound, input.ApplicationID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("update_application", err)
	}

	out := &Output{Application: *app}
	if h.indexer != nil {
		if err := h.indexer.IndexApplication(ctx, *app); err != nil {
			h.logger.Warn("failed to reindex application", map[string]interface{}{
				"applicationId": app.ID,
				"error":         err.Error(),
			})
		} else {
			out.Indexed = true
		}
	}
	return out, nil
}
