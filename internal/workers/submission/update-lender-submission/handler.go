// internal/workers/submission/update-lender-submission/handler.go
package updatelendersubmission

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/models"
	"mca-workers/internal/repository"
)

const TaskType = "update-lender-submission"

type Handler struct {
	config      *Config
	submissions repository.SubmissionStore
	logger      logger.Logger
	errors      *errors.ErrorHandler
	now         func() time.Time
}

func NewHandler(cfg *Config, submissions repository.SubmissionStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      cfg,
		submissions: submissions,
		logger:      log,
		errors:      errors.NewErrorHandler(log),
		now:         time.Now,
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
	patch := input.Patch
	if s := patch.Status; s != nil {
		if !s.Valid() {
			return nil, errors.NewInvalidStatusError(string(*s))
		}
		// A lender decision without an explicit date is stamped now.
		if *s != models.SubmissionStatusPending && patch.ResponseDate == nil {
			now := h.now().UTC()
			patch.ResponseDate = &now
		}
	}

	sub, err := h.submissions.Update(ctx, input.SubmissionID, patch)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewNotFoundError(errors.ErrCodeSubmissionNotFound, input.SubmissionID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("update_submission", err)
	}

	h.logger.Info("submission updated", map[string]interface{}{
		"submissionId": sub.ID,
		"status":       string(sub.Status),
	})
	return &Output{Submission: *sub}, nil
}
