// internal/workers/submission/notify-deal-update/handler.go
package notifydealupdate

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/models"
	"mca-workers/internal/notify"
)

const TaskType = "notify-deal-update"

type Handler struct {
	config   *Config
	notifier notify.Notifier
	logger   logger.Logger
	errors   *errors.ErrorHandler
}

func NewHandler(cfg *Config, notifier notify.Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   cfg,
		notifier: notifier,
		logger:   log,
		errors:   errors.NewErrorHandler(log),
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

// Execute posts the deal snapshot. An undelivered notification is reported
// in the output; the deal itself is already saved.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	deal := input.DealDetails
	if deal.ID == "" {
		deal.ID = deal.ApplicationID
	}

	result := h.notifier.Notify(ctx, models.EndpointUpdatingApplications, deal)
	if !result.Delivered {
		h.logger.Warn("deal update not delivered", map[string]interface{}{
			"applicationId": deal.ApplicationID,
			"attempts":      result.Attempts,
			"error":         result.Error,
		})
	}

	return &Output{
		Delivered: result.Delivered,
		Attempts:  result.Attempts,
		Error:     result.Error,
		SentAt:    result.SentAt.UTC().Format(time.RFC3339),
	}, nil
}
