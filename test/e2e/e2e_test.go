//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/common/config"
	"mca-workers/internal/common/database"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/models"
	"mca-workers/internal/notify"
	"mca-workers/internal/repository"
	"mca-workers/internal/search"
	"mca-workers/internal/templates"

	car "mca-workers/internal/workers/application/create-application-record"
	qp "mca-workers/internal/workers/data-access/query-postgresql"
	sa "mca-workers/internal/workers/data-access/search-applications"
	mlr "mca-workers/internal/workers/lender/manage-lender-record"
	ql "mca-workers/internal/workers/lender/qualify-lenders"
	rlm "mca-workers/internal/workers/lender/rank-lender-matches"
	cls "mca-workers/internal/workers/submission/create-lender-submissions"
	rse "mca-workers/internal/workers/submission/render-submission-emails"
	uls "mca-workers/internal/workers/submission/update-lender-submission"
)

// fixtureSchema mirrors the tables the repositories expect. Production
// schema is managed outside this module.
const fixtureSchema = `
CREATE TABLE IF NOT EXISTS applications (
	id TEXT PRIMARY KEY,
	business_name TEXT NOT NULL, owner_name TEXT NOT NULL, email TEXT NOT NULL,
	phone TEXT NOT NULL, address TEXT, ein TEXT, business_type TEXT, industry TEXT,
	years_in_business DOUBLE PRECISION, number_of_employees INTEGER,
	annual_revenue DOUBLE PRECISION, monthly_revenue DOUBLE PRECISION,
	monthly_deposits DOUBLE PRECISION, existing_debt DOUBLE PRECISION,
	credit_score INTEGER, requested_amount DOUBLE PRECISION, documents TEXT[],
	status TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL, updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS lenders (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL, contact_email TEXT, phone TEXT, status TEXT NOT NULL,
	rating DOUBLE PRECISION, total_applications INTEGER, approval_rate DOUBLE PRECISION,
	min_amount DOUBLE PRECISION, max_amount DOUBLE PRECISION,
	min_credit_score INTEGER, max_credit_score INTEGER,
	min_time_in_business DOUBLE PRECISION, min_monthly_revenue DOUBLE PRECISION,
	industries TEXT[], factor_rate TEXT, payback_term TEXT, approval_time TEXT,
	features TEXT[], created_at TIMESTAMPTZ NOT NULL, updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS lender_submissions (
	id TEXT PRIMARY KEY,
	application_id TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	lender_id TEXT NOT NULL REFERENCES lenders(id) ON DELETE CASCADE,
	status TEXT NOT NULL, response TEXT, offered_amount DOUBLE PRECISION,
	factor_rate DOUBLE PRECISION, terms TEXT, response_date TIMESTAMPTZ, notes TEXT,
	created_at TIMESTAMPTZ NOT NULL, updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS app_settings (
	key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL
);`

type env struct {
	cfg      *config.Config
	db       *sql.DB
	rdb      *database.RedisClient
	index    *search.Client
	webhooks *webhookRecorder
	log      logger.Logger
}

type webhookRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (w *webhookRecorder) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	w.mu.Lock()
	w.paths = append(w.paths, r.URL.Path)
	w.mu.Unlock()
	rw.WriteHeader(http.StatusOK)
}

func (w *webhookRecorder) seen() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.paths...)
}

func setup(t *testing.T) *env {
	t.Helper()
	if os.Getenv("MCA_E2E") == "" {
		t.Skip("set MCA_E2E=1 with postgres, redis and elasticsearch running")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx))
	t.Cleanup(func() { pg.Close() })
	_, err = pg.DB.ExecContext(ctx, fixtureSchema)
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, `TRUNCATE lender_submissions, applications, lenders, app_settings`)
	require.NoError(t, err)

	rdb := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	require.NoError(t, rdb.Client.FlushDB(ctx).Err())
	t.Cleanup(func() { rdb.Close() })

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")
	require.NoError(t, es.EnsureIndex(ctx, es.Index, search.Mapping))

	rec := &webhookRecorder{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	cfg.Webhooks.BaseURL = srv.URL
	cfg.Webhooks.Transport = "http"

	return &env{
		cfg:      cfg,
		db:       pg.DB,
		rdb:      rdb,
		index:    search.NewClient(es.Client, es.Index),
		webhooks: rec,
		log:      logger.NewTestLogger(t),
	}
}

func TestBrokerageFlow(t *testing.T) {
	e := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applications := repository.NewApplicationRepository(e.db)
	lenders := repository.NewCachedLenderRepository(repository.NewLenderRepository(e.db), e.rdb.Client, time.Minute, e.log)
	submissions := repository.NewSubmissionRepository(e.db)
	notifier := notify.NewHTTPNotifier(e.cfg.Webhooks, e.log)

	// 1. lenders
	manage := mlr.NewHandler(mlr.NewConfig(e.cfg), lenders, e.log)
	var lenderIDs []string
	for _, l := range []models.Lender{
		{Name: "Harbor Capital", ContactEmail: "deals@harbor.example", Rating: 4, MinAmount: 10000, MaxAmount: 250000,
			MinCreditScore: 550, MaxCreditScore: 850, MinTimeInBusiness: 1, MinMonthlyRevenue: 10000,
			Industries: []string{models.AllIndustries}, FactorRate: "1.15-1.35", ApprovalTime: "Same day",
			Features: []string{"No collateral", "Daily ACH"}},
		{Name: "Summit Funding", Rating: 3, MinAmount: 100000, MaxAmount: 1000000,
			MinCreditScore: 700, MaxCreditScore: 850, MinTimeInBusiness: 5, MinMonthlyRevenue: 50000,
			Industries: []string{"Healthcare"}},
	} {
		l := l
		out, err := manage.Execute(ctx, &mlr.Input{Action: mlr.ActionCreate, Lender: &l})
		require.NoError(t, err)
		lenderIDs = append(lenderIDs, out.Lender.ID)
	}

	// 2. application
	create := car.NewHandler(car.NewConfig(e.cfg), applications, e.index, notifier, e.log)
	created, err := create.Execute(ctx, &car.Input{Application: models.ApplicantProfile{
		BusinessName: "Riverside Bakery LLC", OwnerName: "Sam Ortiz", Email: "sam@riverside.example",
		Phone: "(555) 010-2000", BusinessType: "LLC", Industry: "Restaurant",
		YearsInBusiness: 3, MonthlyRevenue: 40000, CreditScore: 680, RequestedAmount: 75000,
	}})
	require.NoError(t, err)
	create.Wait()
	assert.True(t, created.Indexed)
	assert.Contains(t, e.webhooks.seen(), e.cfg.Webhooks.NewDealPath)

	// 3. qualification and ranking
	qualified, err := ql.NewHandler(ql.NewConfig(e.cfg), lenders, applications, e.log).
		Execute(ctx, &ql.Input{ApplicationID: created.ApplicationID, StatusFilter: models.LenderStatusActive})
	require.NoError(t, err)
	assert.Equal(t, 2, qualified.TotalLenders)
	assert.Equal(t, 1, qualified.QualifiedCount)

	ranked, err := rlm.NewHandler(rlm.NewConfig(e.cfg), e.log).
		Execute(ctx, &rlm.Input{Matches: qualified.Matches, OnlyQualified: true})
	require.NoError(t, err)
	require.Len(t, ranked.RankedMatches, 1)
	harbor := ranked.RankedMatches[0].ID
	assert.Equal(t, lenderIDs[0], harbor)

	// 4. submissions and emails
	subs, err := cls.NewHandler(cls.NewConfig(e.cfg), submissions, e.log).
		Execute(ctx, &cls.Input{ApplicationID: created.ApplicationID, LenderIDs: []string{harbor}})
	require.NoError(t, err)
	require.Equal(t, 1, subs.SubmissionCount)

	tmpl := templates.NewSettingsStore(repository.NewSettingsRepository(e.db), e.rdb.Client, e.cfg.Templates.SettingsKey, time.Minute, e.log)
	emails, err := rse.NewHandler(rse.NewConfig(e.cfg), applications, lenders, tmpl, e.log).
		Execute(ctx, &rse.Input{ApplicationID: created.ApplicationID, LenderIDs: []string{harbor}})
	require.NoError(t, err)
	require.Len(t, emails.Emails, 1)
	assert.True(t, emails.UsedDefault)
	assert.Contains(t, emails.Emails[0].Body, "Riverside Bakery LLC")
	assert.Equal(t, "deals@harbor.example", emails.Emails[0].To)

	approved := models.SubmissionStatusApproved
	offered := 70000.0
	updated, err := uls.NewHandler(uls.NewConfig(e.cfg), submissions, e.log).
		Execute(ctx, &uls.Input{SubmissionID: subs.Submissions[0].ID, Patch: models.SubmissionPatch{Status: &approved, OfferedAmount: &offered}})
	require.NoError(t, err)
	assert.NotNil(t, updated.Submission.ResponseDate)

	// 5. reads
	details, err := qp.NewHandler(qp.NewConfig(e.cfg), e.db, e.log).
		Execute(ctx, &qp.Input{QueryType: string(models.QueryTypeApplicationDetails), ApplicationID: created.ApplicationID})
	require.NoError(t, err)
	raw, err := json.Marshal(details.Data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"approved"`)

	require.Eventually(t, func() bool {
		res, err := sa.NewHandler(sa.NewConfig(e.cfg), e.index, e.log).Execute(ctx, &sa.Input{Text: "riverside"})
		return err == nil && res.Total >= 1
	}, 10*time.Second, 500*time.Millisecond)
}
