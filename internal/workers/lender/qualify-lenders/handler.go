// internal/workers/lender/qualify-lenders/handler.go
package qualifylenders

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
	"mca-workers/internal/qualification"
	"mca-workers/internal/repository"
)

const TaskType = "qualify-lenders"

type Handler struct {
	config       *Config
	lenders      repository.LenderStore
	applications repository.ApplicationStore
	logger       logger.Logger
	errors       *errors.ErrorHandler
}

// NewHandler expects lenders to be the cached repository in production.
func NewHandler(cfg *Config, lenders repository.LenderStore, applications repository.ApplicationStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		lenders:      lenders,
		applications: applications,
		logger:       log,
		errors:       errors.NewErrorHandler(log),
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
	applicant, err := h.applicant(ctx, input)
	if err != nil {
		return nil, err
	}

	lenders, err := h.lenders.List(ctx)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewQueryTimeoutError("lender_list")
		}
		return nil, errors.NewQueryExecutionFailedError("lender_list", err)
	}
	lenders = filterByStatus(lenders, input.StatusFilter)

	matches := qualification.Qualify(lenders, applicant)
	qualified := qualification.QualifiedCount(matches)

	metrics.LendersQualified.Observe(float64(qualified))
	for _, m := range matches {
		metrics.LenderMatchScore.Observe(float64(m.MatchScore))
	}

	h.logger.Info("lenders qualified", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"totalLenders":   len(lenders),
		"qualifiedCount": qualified,
	})

	return &Output{
		Matches:        matches,
		QualifiedCount: qualified,
		TotalLenders:   len(lenders),
	}, nil
}

func (h *Handler) applicant(ctx context.Context, input *Input) (models.ApplicantProfile, error) {
	if input.Application != nil {
		return *input.Application, nil
	}
	if input.ApplicationID == "" {
		return models.ApplicantProfile{}, errors.NewInputValidationError("application or applicationId is required")
	}

	app, err := h.applications.Get(ctx, input.ApplicationID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return models.ApplicantProfile{}, errors.NewNotFoundError(errors.ErrCodeApplicationNotFound, input.ApplicationID)
	}
	if err != nil {
		return models.ApplicantProfile{}, errors.NewQueryExecutionFailedError("application_details", err)
	}
	return app.ApplicantProfile, nil
}

func filterByStatus(lenders []models.Lender, status models.LenderStatus) []models.Lender {
	if status == "" {
		return lenders
	}
	out := make([]models.Lender, 0, len(lenders))
	for _, l := range lenders {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out
}
