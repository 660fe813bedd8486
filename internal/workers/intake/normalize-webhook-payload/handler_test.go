package normalizewebhookpayload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/common/camunda/camundatest"
	commonerrors "mca-workers/internal/common/errors"
	"mca-workers/internal/common/logger"
)

const origin = "https://forms.mca-broker.example"

func newHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: time.Second, AllowedOrigins: []string{origin}}, logger.NewTestLogger(t))
}

func TestExecute(t *testing.T) {
	out, err := newHandler(t).Execute(context.Background(), &Input{
		Origin: origin,
		Type:   "webhook-response",
		Payload: map[string]interface{}{
			"formData": map[string]interface{}{"Business Name": "Acme", "Credit Score": "7 0 0"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"businessName": "Acme", "creditScore": "700"}, out.Fields)
	assert.Equal(t, 2, out.FieldsFound)
}

func TestExecute_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"origin", Input{Origin: "https://evil.example", Type: "webhook-response"}},
		{"type", Input{Origin: origin, Type: "ping"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newHandler(t).Execute(context.Background(), &tt.input)
			require.Error(t, err)
			assert.Equal(t, commonerrors.ErrCodeWebhookRejected, commonerrors.AsStandardError(err).Code)
		})
	}
}

func TestHandle(t *testing.T) {
	h := newHandler(t)

	t.Run("completes", func(t *testing.T) {
		client := camundatest.NewJobClient()
		h.Handle(client, camundatest.NewJob(t, 1, TaskType, map[string]interface{}{
			"origin":  origin,
			"type":    "webhook-response",
			"payload": map[string]interface{}{"data": map[string]interface{}{"email": "a@b.co"}},
		}))

		completed := client.Completed(t)
		require.Len(t, completed, 1)
		assert.Equal(t, "a@b.co", completed[0]["fields"].(map[string]interface{})["email"])
	})

	t.Run("rejected origin throws business error", func(t *testing.T) {
		client := camundatest.NewJobClient()
		h.Handle(client, camundatest.NewJob(t, 2, TaskType, map[string]interface{}{
			"origin":  "https://evil.example",
			"type":    "webhook-response",
			"payload": map[string]interface{}{},
		}))

		require.Len(t, client.Thrown(), 1)
		assert.Equal(t, "WEBHOOK_REJECTED", client.Thrown()[0].ErrorCode)
		assert.Empty(t, client.Failed())
	})
}
