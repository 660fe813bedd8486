package normalizewebhookpayload

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/intake"
)

const TaskType = "normalize-webhook-payload"

type Handler struct {
	config  *Config
	adapter *intake.Adapter
	logger  logger.Logger
	errors  *errors.ErrorHandler
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  cfg,
		adapter: intake.NewAdapter(cfg.AllowedOrigins),
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	fields, err := h.adapter.Normalize(intake.Event{
		Origin:  input.Origin,
		Type:    input.Type,
		Payload: input.Payload,
	})
	if err != nil {
		if stderrors.Is(err, intake.ErrOriginNotAllowed) {
			h.logger.Warn("ignoring event from unallowed origin", map[string]interface{}{"origin": input.Origin})
		}
		return nil, errors.NewBusinessRuleError(errors.ErrCodeWebhookRejected, "Webhook event rejected", err.Error())
	}

	return &Output{Fields: fields, FieldsFound: len(fields)}, nil
}
