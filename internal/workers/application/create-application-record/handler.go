// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/metrics"
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
	"mca-workers/internal/notify"
	"mca-workers/internal/repository"
)

const TaskType = "create-application-record"

// Indexer receives each stored application for search.
type Indexer interface {
	IndexApplication(ctx context.Context, app models.Application) error
}

type Handler struct {
	config   *Config
	store    repository.ApplicationStore
	indexer  Indexer
	notifier notify.Notifier
	logger   logger.Logger
	errors   *errors.ErrorHandler
	pending  sync.WaitGroup
}

// NewHandler builds the handler. indexer may be nil when search is
// unavailable.
func NewHandler(cfg *Config, store repository.ApplicationStore, indexer Indexer, notifier notify.Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   cfg,
		store:    store,
		indexer:  indexer,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	status := input.Status
	if status == "" {
		status = models.ApplicationStatusSubmitted
	}
	if !status.Valid() {
		return nil, errors.NewInvalidStatusError(string(status))
	}

	fieldErrs, err := validation.ValidateStruct(input.Application)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if len(fieldErrs) > 0 {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fe.Field+": "+fe.Message)
		}
		return nil, errors.NewInputValidationError(strings.Join(msgs, "; "))
	}

	app, err := h.store.Create(ctx, input.Application, status)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	h.logger.Info("application created", map[string]interface{}{
		"applicationId": app.ID,
		"status":        string(app.Status),
	})

	indexed := h.index(ctx, *app)
	h.notifyNewDeal(ctx, *app)

	return &Output{
		ApplicationID:     app.ID,
		ApplicationStatus: string(app.Status),
		CreatedAt:         app.CreatedAt.UTC().Format(time.RFC3339),
		Indexed:           indexed,
	}, nil
}

// index is best effort; search lagging the database is acceptable.
func (h *Handler) index(ctx context.Context, app models.Application) bool {
	if h.indexer == nil {
		return false
	}
	if err := h.indexer.IndexApplication(ctx, app); err != nil {
		h.logger.Warn("failed to index application", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
		return false
	}
	return true
}

// notifyNewDeal outlives the job: the delivery keeps the job's trace but not
// its deadline.
func (h *Handler) notifyNewDeal(ctx context.Context, app models.Application) {
	if h.notifier == nil {
		return
	}
	payload := NewDealPayload{
		ApplicationID:   app.ID,
		BusinessName:    app.BusinessName,
		OwnerName:       app.OwnerName,
		Email:           app.Email,
		Phone:           app.Phone,
		Industry:        app.Industry,
		RequestedAmount: app.RequestedAmount,
		CreditScore:     app.CreditScore,
		Status:          string(app.Status),
		CreatedAt:       app.CreatedAt.UTC().Format(time.RFC3339),
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.config.NotifyTimeout)
		defer cancel()
		h.notifier.Notify(ctx, models.EndpointNewDeal, payload)
	}()
}

// Wait blocks until background notifications have finished.
func (h *Handler) Wait() {
	h.pending.Wait()
}
