package mergedraftfields

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/draft"
)

const TaskType = "merge-draft-fields"

type Handler struct {
	config *Config
	store  draft.Store
	logger logger.Logger
	errors *errors.ErrorHandler
}

func NewHandler(cfg *Config, store draft.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{config: cfg, store: store, logger: log, errors: errors.NewErrorHandler(log)}
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
	if !input.Source.Valid() {
		return nil, errors.NewInputValidationError("unknown source " + string(input.Source))
	}

	var changed []string
	d, err := h.store.Update(ctx, input.DraftID, func(d *draft.Draft) error {
		changed = draft.Apply(d, input.Source, input.Fields)
		return nil
	})
	if err != nil {
		if stderrors.Is(err, draft.ErrDraftConflict) {
			return nil, errors.NewDraftConflictError(input.DraftID)
		}
		return nil, errors.NewCacheUnavailableError(err)
	}

	h.logger.Info("draft merged", map[string]interface{}{
		"draftId": input.DraftID,
		"source":  string(input.Source),
		"changed": len(changed),
	})
	if changed == nil {
		changed = []string{}
	}
	return &Output{
		DraftID:       d.ID,
		Values:        d.Values,
		Provenance:    d.Provenance,
		ChangedFields: changed,
	}, nil
}
