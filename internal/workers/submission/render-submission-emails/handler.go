// internal/workers/submission/render-submission-emails/handler.go
package rendersubmissionemails

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/models"
	"mca-workers/internal/repository"
	"mca-workers/internal/templates"
)

const TaskType = "render-submission-emails"

type Handler struct {
	config       *Config
	applications repository.ApplicationStore
	lenders      repository.LenderStore
	templates    templates.Store
	logger       logger.Logger
	errors       *errors.ErrorHandler
}

func NewHandler(cfg *Config, applications repository.ApplicationStore, lenders repository.LenderStore, tmpl templates.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		applications: applications,
		lenders:      lenders,
		templates:    tmpl,
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
	app, err := h.applications.Get(ctx, input.ApplicationID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewNotFoundError(errors.ErrCodeApplicationNotFound, input.ApplicationID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("application_details", err)
	}

	tmpl, isDefault, err := h.templates.Load(ctx)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("email_template", err)
	}
	if unknown := templates.UnknownPlaceholders(tmpl); len(unknown) > 0 {
		h.logger.Warn("template has unknown placeholders", map[string]interface{}{
			"placeholders": strings.Join(unknown, ","),
		})
	}

	// Each goroutine writes only its own slot, so output order follows
	// lenderIds regardless of completion order.
	emails := make([]models.SubmissionEmail, len(input.LenderIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Concurrency)
	for i, lenderID := range input.LenderIDs {
		i, lenderID := i, lenderID
		g.Go(func() error {
			lender, err := h.lenders.Get(gctx, lenderID)
			if stderrors.Is(err, repository.ErrNotFound) {
				return errors.NewNotFoundError(errors.ErrCodeLenderNotFound, lenderID)
			}
			if err != nil {
				return errors.NewQueryExecutionFailedError("lender_details", err)
			}
			rendered := templates.Render(tmpl, *app, *lender)
			emails[i] = models.SubmissionEmail{
				LenderID:   lender.ID,
				LenderName: lender.Name,
				To:         lender.ContactEmail,
				Subject:    h.subject(rendered.Subject, app.BusinessName),
				Body:       rendered.Body,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	missing := []string{}
	for _, e := range emails {
		if e.To == "" {
			missing = append(missing, e.LenderID)
		}
	}
	if len(missing) > 0 {
		h.logger.Warn("lenders without contact email", map[string]interface{}{"lenderIds": strings.Join(missing, ",")})
	}

	return &Output{Emails: emails, UsedDefault: isDefault, MissingEmails: missing}, nil
}

func (h *Handler) subject(rendered, businessName string) string {
	if rendered == "" {
		rendered = "Funding request: " + businessName
	}
	if h.config.SubjectPrefix != "" {
		rendered = h.config.SubjectPrefix + " " + rendered
	}
	return rendered
}
