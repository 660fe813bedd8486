// internal/workers/lender/manage-lender-record/handler.go
package managelenderrecord

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
	"mca-workers/internal/repository"
)

const TaskType = "manage-lender-record"

type Handler struct {
	config  *Config
	lenders repository.LenderStore
	logger  logger.Logger
	errors  *errors.ErrorHandler
}

// NewHandler takes the cached lender repository so that every write drops
// the cached lender list.
func NewHandler(cfg *Config, lenders repository.LenderStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  cfg,
		lenders: lenders,
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
	switch input.Action {
	case ActionCreate:
		lender, err := h.validLender(input.Lender)
		if err != nil {
			return nil, err
		}
		created, err := h.lenders.Create(ctx, lender)
		if err != nil {
			return nil, errors.NewDatabaseInsertFailedError(err)
		}
		h.logger.Info("lender created", map[string]interface{}{"lenderId": created.ID})
		return &Output{Lender: created}, nil

	case ActionUpdate:
		if input.LenderID == "" {
			return nil, errors.NewInputValidationError("lenderId is required for update")
		}
		lender, err := h.validLender(input.Lender)
		if err != nil {
			return nil, err
		}
		updated, err := h.lenders.Update(ctx, input.LenderID, lender)
		if err != nil {
			return nil, h.storeError(err, "update_lender", input.LenderID)
		}
		h.logger.Info("lender updated", map[string]interface{}{"lenderId": updated.ID})
		return &Output{Lender: updated}, nil

	case ActionDelete:
		if input.LenderID == "" {
			return nil, errors.NewInputValidationError("lenderId is required for delete")
		}
		if err := h.lenders.Delete(ctx, input.LenderID); err != nil {
			return nil, h.storeError(err, "delete_lender", input.LenderID)
		}
		h.logger.Info("lender deleted", map[string]interface{}{"lenderId": input.LenderID})
		return &Output{Deleted: true}, nil

	default:
		return nil, errors.NewInputValidationError(fmt.Sprintf("unknown action %q", input.Action))
	}
}

// validLender applies defaults and checks the underwriting rules. A lender
// with min above max could never qualify anyone, so it is rejected.
func (h *Handler) validLender(l *models.Lender) (models.Lender, error) {
	if l == nil {
		return models.Lender{}, errors.NewInputValidationError("lender is required")
	}
	lender := *l
	if lender.Status == "" {
		lender.Status = models.LenderStatusActive
	}

	fieldErrs, err := validation.ValidateStruct(lender)
	if err != nil {
		return models.Lender{}, errors.NewInternalError(err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	for _, industry := range lender.Industries {
		if industry != models.AllIndustries && !models.IsIndustry(industry) {
			msgs = append(msgs, fmt.Sprintf("industries: unknown industry %q", industry))
		}
	}
	if len(msgs) > 0 {
		return models.Lender{}, errors.NewBusinessRuleError(errors.ErrCodeInvalidLenderRules,
			"Lender rules are inconsistent", strings.Join(msgs, "; "))
	}
	return lender, nil
}

func (h *Handler) storeError(err error, op, id string) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFoundError(errors.ErrCodeLenderNotFound, id)
	}
	return errors.NewQueryExecutionFailedError(op, err)
}
