package createapplicationrecord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/common/camunda/camundatest"
	commonerrors "mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/models"
	"mca-workers/internal/repository"
	"mca-workers/internal/repository/repositorytest"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []interface{}
}

func (n *recordingNotifier) Notify(_ context.Context, endpoint models.NotificationEndpoint, payload interface{}) models.NotificationResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, payload)
	return models.NotificationResult{Endpoint: endpoint, Delivered: true, Attempts: 1}
}

type fakeIndexer struct {
	indexed []string
	err     error
}

func (f *fakeIndexer) IndexApplication(_ context.Context, app models.Application) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, app.ID)
	return nil
}

func testConfig() *Config {
	return &Config{Timeout: 5 * time.Second, NotifyTimeout: time.Second}
}

func profile() map[string]interface{} {
	return map[string]interface{}{
		"businessName":    "Acme Bakery LLC",
		"ownerName":       "Jordan Smith",
		"email":           "jordan@acme.test",
		"phone":           "(555) 123-4567",
		"businessType":    "LLC",
		"industry":        "Restaurant",
		"yearsInBusiness": 4,
		"monthlyRevenue":  45000,
		"creditScore":     680,
		"requestedAmount": 75000,
	}
}

func TestHandle_CreatesIndexesAndNotifies(t *testing.T) {
	store := repositorytest.NewApplications()
	idx := &fakeIndexer{}
	notifier := &recordingNotifier{}
	h := NewHandler(testConfig(), store, idx, notifier, logger.NewTestLogger(t))
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 1, TaskType, map[string]interface{}{"application": profile()}))
	h.Wait()

	completed := client.Completed(t)
	require.Len(t, completed, 1)
	assert.Equal(t, "app-1", completed[0]["applicationId"])
	assert.Equal(t, "submitted", completed[0]["applicationStatus"])
	assert.Equal(t, "2025-03-01T12:00:00Z", completed[0]["createdAt"])
	assert.Equal(t, true, completed[0]["indexed"])
	assert.Equal(t, []string{"app-1"}, idx.indexed)

	require.Len(t, notifier.calls, 1)
	payload := notifier.calls[0].(NewDealPayload)
	assert.Equal(t, "app-1", payload.ApplicationID)
	assert.Equal(t, 75000.0, payload.RequestedAmount)
}

func TestExecute_ExplicitDraftStatus(t *testing.T) {
	h := NewHandler(testConfig(), repositorytest.NewApplications(), nil, nil, logger.NewNoOpLogger())

	var p models.ApplicantProfile
	p.BusinessName, p.OwnerName, p.Email, p.Phone = "Acme", "Jordan", "j@a.co", "5551234567"
	p.BusinessType, p.Industry = "LLC", "Retail"
	p.MonthlyRevenue, p.RequestedAmount, p.CreditScore = 20000, 20000, 600

	out, err := h.Execute(context.Background(), &Input{Application: p, Status: models.ApplicationStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, "draft", out.ApplicationStatus)
	assert.False(t, out.Indexed)
}

func TestExecute_IndexFailureIsOnlyAWarning(t *testing.T) {
	h := NewHandler(testConfig(), repositorytest.NewApplications(), &fakeIndexer{err: errors.New("es down")}, nil, logger.NewNoOpLogger())
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 2, TaskType, map[string]interface{}{"application": profile()}))

	completed := client.Completed(t)
	require.Len(t, completed, 1)
	assert.Equal(t, false, completed[0]["indexed"])
}

func TestHandle_InvalidProfileThrows(t *testing.T) {
	store := repositorytest.NewApplications()
	h := NewHandler(testConfig(), store, nil, nil, logger.NewNoOpLogger())
	client := camundatest.NewJobClient()

	app := profile()
	app["email"] = "not-an-email"
	app["creditScore"] = 200
	h.Handle(client, camundatest.NewJob(t, 3, TaskType, map[string]interface{}{"application": app}))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, string(commonerrors.ErrCodeInputValidationFailed), client.Thrown()[0].ErrorCode)

	apps, _ := store.List(context.Background())
	assert.Empty(t, apps)
}

func TestHandle_UnknownStatusRejectedBySchema(t *testing.T) {
	h := NewHandler(testConfig(), repositorytest.NewApplications(), nil, nil, logger.NewNoOpLogger())
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 4, TaskType, map[string]interface{}{"application": profile(), "status": "archived"}))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, string(commonerrors.ErrCodeInputValidationFailed), client.Thrown()[0].ErrorCode)
}

func TestHandle_InsertFailureRetries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO applications").WillReturnError(errors.New("connection reset"))

	notifier := &recordingNotifier{}
	h := NewHandler(testConfig(), repository.NewApplicationRepository(db), nil, notifier, logger.NewNoOpLogger())
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 5, TaskType, map[string]interface{}{"application": profile()}))
	h.Wait()

	require.Len(t, client.Failed(), 1)
	assert.Equal(t, int32(2), client.Failed()[0].Retries)
	assert.Empty(t, notifier.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
