package updatelendersubmission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/common/camunda/camundatest"
	commonerrors "mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/models"
	"mca-workers/internal/repository/repositorytest"
)

var fixedNow = time.Date(2025, 6, 2, 15, 4, 5, 0, time.UTC)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store := repositorytest.NewSubmissions(nil)
	_, err := store.CreateMany(context.Background(), "app-1", []string{"l-1"})
	require.NoError(t, err)

	h := NewHandler(&Config{Timeout: 5 * time.Second}, store, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

func TestExecute_DecisionStampsResponseDate(t *testing.T) {
	h := newHandler(t)
	status := models.SubmissionStatusCounterOffer
	amount := 60000.0

	out, err := h.Execute(context.Background(), &Input{SubmissionID: "sub-1", Patch: models.SubmissionPatch{
		Status: &status, OfferedAmount: &amount,
	}})
	require.NoError(t, err)

	require.NotNil(t, out.Submission.ResponseDate)
	assert.Equal(t, fixedNow, *out.Submission.ResponseDate)
	assert.Equal(t, 60000.0, *out.Submission.OfferedAmount)
	assert.Equal(t, models.SubmissionStatusCounterOffer, out.Submission.Status)
}

func TestExecute_ExplicitResponseDateKept(t *testing.T) {
	h := newHandler(t)
	status := models.SubmissionStatusApproved
	given := time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)

	out, err := h.Execute(context.Background(), &Input{SubmissionID: "sub-1", Patch: models.SubmissionPatch{
		Status: &status, ResponseDate: &given,
	}})
	require.NoError(t, err)
	assert.Equal(t, given, *out.Submission.ResponseDate)
}

func TestExecute_PendingOrNotesOnlyLeavesDateUnset(t *testing.T) {
	h := newHandler(t)
	notes := "waiting on bank statements"
	pending := models.SubmissionStatusPending

	out, err := h.Execute(context.Background(), &Input{SubmissionID: "sub-1", Patch: models.SubmissionPatch{Notes: &notes}})
	require.NoError(t, err)
	assert.Nil(t, out.Submission.ResponseDate)

	out, err = h.Execute(context.Background(), &Input{SubmissionID: "sub-1", Patch: models.SubmissionPatch{Status: &pending}})
	require.NoError(t, err)
	assert.Nil(t, out.Submission.ResponseDate)
}

func TestExecute_InvalidStatus(t *testing.T) {
	h := newHandler(t)
	bad := models.SubmissionStatus("withdrawn")

	_, err := h.Execute(context.Background(), &Input{SubmissionID: "sub-1", Patch: models.SubmissionPatch{Status: &bad}})
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeInvalidStatus, commonerrors.AsStandardError(err).Code)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name      string
		vars      map[string]interface{}
		wantThrow string
	}{
		{
			name: "funded",
			vars: map[string]interface{}{"submissionId": "sub-1", "patch": map[string]interface{}{"status": "funded", "factorRate": 1.25}},
		},
		{
			name:      "status outside enum",
			vars:      map[string]interface{}{"submissionId": "sub-1", "patch": map[string]interface{}{"status": "withdrawn"}},
			wantThrow: string(commonerrors.ErrCodeInputValidationFailed),
		},
		{
			name:      "unknown submission",
			vars:      map[string]interface{}{"submissionId": "sub-404", "patch": map[string]interface{}{"status": "declined"}},
			wantThrow: string(commonerrors.ErrCodeSubmissionNotFound),
		},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := camundatest.NewJobClient()
			newHandler(t).Handle(client, camundatest.NewJob(t, int64(i+1), TaskType, tt.vars))

			if tt.wantThrow != "" {
				require.Len(t, client.Thrown(), 1)
				assert.Equal(t, tt.wantThrow, client.Thrown()[0].ErrorCode)
				return
			}
			completed := client.Completed(t)
			require.Len(t, completed, 1)
			sub := completed[0]["submission"].(map[string]interface{})
			assert.Equal(t, "funded", sub["status"])
			assert.Equal(t, "2025-06-02T15:04:05Z", sub["responseDate"])
		})
	}
}
