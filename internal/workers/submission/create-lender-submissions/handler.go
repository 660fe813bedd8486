// internal/workers/submission/create-lender-submissions/handler.go
package createlendersubmissions

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/repository"
)

const (
	TaskType = "create-lender-submissions"

	foreignKeyViolation = "23503"
)

type Handler struct {
	config      *Config
	submissions repository.SubmissionStore
	logger      logger.Logger
	errors      *errors.ErrorHandler
}

func NewHandler(cfg *Config, submissions repository.SubmissionStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      cfg,
		submissions: submissions,
		logger:      log,
		errors:      errors.NewErrorHandler(log),
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
	lenderIDs := dedupe(input.LenderIDs)
	if len(lenderIDs) == 0 {
		return nil, errors.NewBusinessRuleError(errors.ErrCodeNoLendersSelected,
			"No lenders selected", input.ApplicationID)
	}

	subs, err := h.submissions.CreateMany(ctx, input.ApplicationID, lenderIDs)
	if err != nil {
		return nil, h.insertError(err, input.ApplicationID)
	}

	h.logger.Info("lender submissions created", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"count":         len(subs),
	})
	return &Output{Submissions: subs, SubmissionCount: len(subs)}, nil
}

// insertError turns a foreign key violation into the matching not-found
// error. The whole batch has been rolled back by then.
func (h *Handler) insertError(err error, applicationID string) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
		if strings.Contains(pqErr.Constraint, "lender") {
			return errors.NewNotFoundError(errors.ErrCodeLenderNotFound, pqErr.Detail)
		}
		return errors.NewNotFoundError(errors.ErrCodeApplicationNotFound, applicationID)
	}
	return errors.NewDatabaseInsertFailedError(err)
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
