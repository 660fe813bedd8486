// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mca-workers/internal/common/aws"
	"mca-workers/internal/common/camunda"
	"mca-workers/internal/common/config"
	"mca-workers/internal/common/database"
	commonerrors "mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/common/observability"
	"mca-workers/internal/draft"
	"mca-workers/internal/extraction"
	"mca-workers/internal/models"
	"mca-workers/internal/notify"
	"mca-workers/internal/repository"
	"mca-workers/internal/search"
	"mca-workers/internal/templates"
	tasks "mca-workers/internal/workers"
	"mca-workers/pkg/registry"

	// Intake (3)
	edf "mca-workers/internal/workers/document/extract-document-fields"
	mdf "mca-workers/internal/workers/intake/merge-draft-fields"
	nwp "mca-workers/internal/workers/intake/normalize-webhook-payload"

	// Applications (4)
	car "mca-workers/internal/workers/application/create-application-record"
	dar "mca-workers/internal/workers/application/delete-application-record"
	uar "mca-workers/internal/workers/application/update-application-record"
	vad "mca-workers/internal/workers/application/validate-application-data"

	// Lenders (3)
	mlr "mca-workers/internal/workers/lender/manage-lender-record"
	ql "mca-workers/internal/workers/lender/qualify-lenders"
	rlm "mca-workers/internal/workers/lender/rank-lender-matches"

	// Submissions (4)
	cls "mca-workers/internal/workers/submission/create-lender-submissions"
	ndu "mca-workers/internal/workers/submission/notify-deal-update"
	rse "mca-workers/internal/workers/submission/render-submission-emails"
	uls "mca-workers/internal/workers/submission/update-lender-submission"

	// Data access and settings (3)
	qp "mca-workers/internal/workers/data-access/query-postgresql"
	sa "mca-workers/internal/workers/data-access/search-applications"
	met "mca-workers/internal/workers/infrastructure/manage-email-template"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// applicationIndex is satisfied by *search.Client; nil means search is off.
type applicationIndex interface {
	IndexApplication(ctx context.Context, app models.Application) error
	DeleteApplication(ctx context.Context, id string) error
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type registration struct {
	taskType string
	handler  camunda.JobHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe (the client retries its own topology probe) ---
	zeebe, err := camunda.NewClient(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch (optional: without it search is off and indexing is skipped) ---
	var (
		index    applicationIndex
		esClient *database.ElasticsearchClient
	)
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := esClient.Ping(ctx); err != nil {
				return err
			}
			return esClient.EnsureIndex(ctx, esClient.Index, search.Mapping)
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, running without search", zap.Error(err))
			esClient = nil
		} else {
			index = search.NewClient(esClient.Client, esClient.Index)
			zapLog.Info("Elasticsearch connected successfully", zap.String("index", esClient.Index))
		}
	}

	// --- Notification transport ---
	var publisher notify.SNSPublisher
	if cfg.Webhooks.Transport == "sns" {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		publisher = snsClient
	}
	notifier, err := notify.New(cfg.Webhooks, publisher, cfg.Integrations.AWS.SNS.TopicARN, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	// --- Stores ---
	applications := repository.NewApplicationRepository(pg.DB)
	lenders := repository.NewCachedLenderRepository(
		repository.NewLenderRepository(pg.DB),
		rdb.Client,
		time.Duration(cfg.Cache.LenderTTL)*time.Second,
		log,
	)
	submissions := repository.NewSubmissionRepository(pg.DB)
	emailTemplate := templates.NewSettingsStore(
		repository.NewSettingsRepository(pg.DB),
		rdb.Client,
		cfg.Templates.SettingsKey,
		time.Duration(cfg.Cache.LenderTTL)*time.Second,
		log,
	)
	drafts := draft.NewRedisStore(rdb.Client, time.Duration(cfg.Cache.DraftTTL)*time.Second)

	extractCfg := edf.NewConfig(cfg)
	createHandler := car.NewHandler(car.NewConfig(cfg), applications, index, notifier, log)

	registrations := []registration{
		{edf.TaskType, edf.NewHandler(extractCfg, extraction.NewExtractor(), extraction.NewPDFDecoder(extractCfg.MaxPages), log)},
		{nwp.TaskType, nwp.NewHandler(nwp.NewConfig(cfg), log)},
		{mdf.TaskType, mdf.NewHandler(mdf.NewConfig(cfg), drafts, log)},

		{vad.TaskType, vad.NewHandler(vad.NewConfig(cfg), log)},
		{car.TaskType, createHandler},
		{uar.TaskType, uar.NewHandler(uar.NewConfig(cfg), applications, index, log)},
		{dar.TaskType, dar.NewHandler(dar.NewConfig(cfg), applications, index, log)},

		{ql.TaskType, ql.NewHandler(ql.NewConfig(cfg), lenders, applications, log)},
		{rlm.TaskType, rlm.NewHandler(rlm.NewConfig(cfg), log)},
		{mlr.TaskType, mlr.NewHandler(mlr.NewConfig(cfg), lenders, log)},

		{cls.TaskType, cls.NewHandler(cls.NewConfig(cfg), submissions, log)},
		{uls.TaskType, uls.NewHandler(uls.NewConfig(cfg), submissions, log)},
		{rse.TaskType, rse.NewHandler(rse.NewConfig(cfg), applications, lenders, emailTemplate, log)},
		{ndu.TaskType, ndu.NewHandler(ndu.NewConfig(cfg), notifier, log)},

		{qp.TaskType, qp.NewHandler(qp.NewConfig(cfg), pg.DB, log)},
		{met.TaskType, met.NewHandler(met.NewConfig(cfg), emailTemplate, log)},
	}
	if index != nil {
		registrations = append(registrations, registration{sa.TaskType, sa.NewHandler(sa.NewConfig(cfg), index, log)})
	} else {
		zapLog.Warn("search worker not started", zap.String("taskType", sa.TaskType))
	}

	var workers []*camunda.CamundaWorker
	for _, r := range registrations {
		if !config.IsWorkerEnabled(cfg, r.taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", r.taskType))
			continue
		}
		wc := config.GetWorkerConfig(cfg, r.taskType)
		workers = append(workers, camunda.NewWorker(zeebe.Zeebe(), camunda.WorkerOptions{
			TaskType:      r.taskType,
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, r.handler, obs, zapLog))
	}
	zapLog.Info("workers registered", zap.Int("started", len(workers)), zap.Int("known", len(registrations)))

	for taskType := range cfg.Workers {
		if _, ok := tasks.Lookup(taskType); !ok {
			zapLog.Warn("configured worker has no implementation", zap.String("taskType", taskType))
		}
	}
	checkRegistry(cfg.Templates.RegistryPath, zapLog)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		g, gctx := errgroup.WithContext(checkCtx)
		g.Go(func() error { return pg.Ping(gctx) })
		g.Go(func() error { return rdb.Ping(gctx) })
		if esClient != nil {
			g.Go(func() error { return esClient.Ping(gctx) })
		}
		g.Go(func() error { return zeebe.HealthCheck(gctx) })
		if err := g.Wait(); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	// new-deal notifications run detached from their jobs
	createHandler.Wait()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry only logs: a stale catalogue must not stop job processing.
func checkRegistry(path string, log *zap.Logger) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	codes := make([]string, 0, len(commonerrors.BPMNErrorMapping))
	for _, code := range commonerrors.BPMNErrorMapping {
		codes = append(codes, code)
	}
	if err := reg.Validate(registry.Known{TaskTypes: tasks.TaskTypes(), ErrorCodes: codes}); err != nil {
		log.Warn("activity registry out of date", zap.String("path", path), zap.Error(err))
		return
	}
	log.Info("activity registry ok", zap.Int("activities", len(reg.Activities)))
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
