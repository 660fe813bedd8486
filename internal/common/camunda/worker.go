// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"mca-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is implemented by every task worker. Handlers complete or
// fail the job themselves.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// ContextJobHandler receives the job span's context so downstream calls
// join the job trace.
type ContextJobHandler interface {
	JobHandler
	HandleContext(ctx context.Context, client worker.JobClient, job entities.Job)
}

type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
	Concurrency   int
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for opts.TaskType and wraps handler with a
// span and otel job metrics.
func NewWorker(client zbc.Client, opts WorkerOptions, handler JobHandler, obs *observability.Observability, logger *zap.Logger) *CamundaWorker {
	logger = logger.With(zap.String("taskType", opts.TaskType))

	step := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(Instrument(opts.TaskType, handler, obs)).
		MaxJobsActive(opts.MaxJobsActive).
		Name(opts.TaskType + "-worker")
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}
	if opts.Concurrency > 0 {
		step = step.Concurrency(opts.Concurrency)
	}

	w := &CamundaWorker{worker: step.Open(), logger: logger, taskType: opts.TaskType}
	logger.Info("worker started", zap.Int("maxJobsActive", opts.MaxJobsActive))
	return w
}

// Instrument adapts a JobHandler to the zeebe handler func.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		ctx, span := obs.StartJobSpan(context.Background(), taskType, job.Key, job.ProcessInstanceKey)
		defer func() {
			obs.RecordJob(ctx, taskType, time.Since(start))
			span.End()
		}()
		if h, ok := handler.(ContextJobHandler); ok {
			h.HandleContext(ctx, client, job)
			return
		}
		handler.Handle(client, job)
	}
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker")
	w.worker.Close()
	w.worker.AwaitClose()
}
