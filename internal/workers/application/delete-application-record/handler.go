// internal/workers/application/delete-application-record/handler.go
package deleteapplicationrecord

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/repository"
)

const TaskType = "delete-application-record"

// Deindexer drops an application from search. Missing documents are not an
// error.
type Deindexer interface {
	DeleteApplication(ctx context.Context, id string) error
}

type Handler struct {
	config    *Config
	store     repository.ApplicationStore
	deindexer Deindexer
	logger    logger.Logger
	errors    *errors.ErrorHandler
}

func NewHandler(cfg *Config, store repository.ApplicationStore, deindexer Deindexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		store:     store,
		deindexer: deindexer,
		logger:    log,
		errors:    errors.NewErrorHandler(log),
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
	err := h.store.Delete(ctx, input.ApplicationID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewNotFoundError(errors.ErrCodeApplicationNotFound, input.ApplicationID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("delete_application", err)
	}

	if h.deindexer != nil {
		if err := h.deindexer.DeleteApplication(ctx, input.ApplicationID); err != nil {
			h.logger.Warn("failed to remove application from search", map[string]interface{}{
				"applicationId": input.ApplicationID,
				"error":         err.Error(),
			})
		}
	}

	h.logger.Info("application deleted", map[string]interface{}{"applicationId": input.ApplicationID})
	return &Output{Deleted: true}, nil
}
