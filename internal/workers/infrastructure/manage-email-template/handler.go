// internal/workers/infrastructure/manage-email-template/handler.go
package manageemailtemplate

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/templates"
)

const TaskType = "manage-email-template"

type Handler struct {
	config    *Config
	templates templates.Store
	logger    logger.Logger
	errors    *errors.ErrorHandler
}

func NewHandler(cfg *Config, store templates.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		templates: store,
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

// Execute applies the action and always answers with the template now in
// effect.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	switch input.Action {
	case ActionGet:
	case ActionSet:
		if err := h.templates.Set(ctx, input.Template); err != nil {
			if stderrors.Is(err, templates.ErrInvalidTemplate) {
				return nil, errors.NewBusinessRuleError(errors.ErrCodeTemplateInvalid, "Template rejected", err.Error())
			}
			return nil, errors.NewDatabaseInsertFailedError(err)
		}
		h.logger.Info("email template saved", map[string]interface{}{"length": len(input.Template)})
	case ActionReset:
		if err := h.templates.Reset(ctx); err != nil {
			return nil, errors.NewQueryExecutionFailedError("reset_template", err)
		}
		h.logger.Info("email template reset to default", nil)
	default:
		return nil, errors.NewInputValidationError(fmt.Sprintf("unknown action %q", input.Action))
	}

	tmpl, isDefault, err := h.templates.Load(ctx)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load_template", err)
	}

	unknown := templates.UnknownPlaceholders(tmpl)
	if unknown == nil {
		unknown = []string{}
	}
	return &Output{Template: tmpl, IsDefault: isDefault, UnknownPlaceholders: unknown}, nil
}
