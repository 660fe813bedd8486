package extractdocumentfields

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/common/camunda/camundatest"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/extraction"
)

type stubDecoder struct {
	pages []string
	err   error
}

func (s *stubDecoder) Decode(context.Context, []byte) ([]string, error) {
	return s.pages, s.err
}

func newHandler(t *testing.T, decoder extraction.Decoder) *Handler {
	cfg := &Config{Timeout: 5 * time.Second, MaxDocumentBytes: 1024}
	clock := extraction.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	return NewHandler(cfg, extraction.NewExtractor(clock), decoder, logger.NewTestLogger(t))
}

const page = "Business Name: Acme Bakery LLC Owner Name: Jordan Smith Credit Score: 680 Requested Amount: $75,000"

// ==========================
// Execute
// ==========================

func TestExecute_Document(t *testing.T) {
	h := newHandler(t, &stubDecoder{pages: []string{page}})

	out, err := h.Execute(context.Background(), &Input{
		DocumentBase64: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		FileName:       "app.pdf",
	})
	require.NoError(t, err)
	assert.False(t, out.ExtractionFailed)
	assert.Equal(t, "Jordan Smith", out.Fields[extraction.FieldOwnerName])
	assert.Equal(t, "680", out.Fields[extraction.FieldCreditScore])
	assert.Equal(t, "75000", out.Fields[extraction.FieldRequestedAmount])
	assert.Equal(t, out.Fields.Found(), out.FieldsFound)
}

func TestExecute_Text(t *testing.T) {
	h := newHandler(t, &stubDecoder{err: errors.New("must not be called")})

	out, err := h.Execute(context.Background(), &Input{Text: page})
	require.NoError(t, err)
	assert.Equal(t, "680", out.Fields[extraction.FieldCreditScore])
}

func TestExecute_DecodeFailureCompletesWithAdvisory(t *testing.T) {
	h := newHandler(t, &stubDecoder{err: extraction.ErrExtractionFailed})

	out, err := h.Execute(context.Background(), &Input{DocumentBase64: base64.StdEncoding.EncodeToString([]byte("junk"))})
	require.NoError(t, err)
	assert.True(t, out.ExtractionFailed)
	assert.Equal(t, ManualEntryMessage, out.Message)
	assert.Zero(t, out.FieldsFound)
	assert.Len(t, out.Fields, len(extraction.FieldNames))
}

func TestExecute_RejectsBadInput(t *testing.T) {
	h := newHandler(t, &stubDecoder{})

	_, err := h.Execute(context.Background(), &Input{DocumentBase64: "***"})
	assert.Error(t, err)

	big := base64.StdEncoding.EncodeToString(make([]byte, 2048))
	_, err = h.Execute(context.Background(), &Input{DocumentBase64: big})
	assert.Error(t, err)
}

// ==========================
// Handle
// ==========================

func TestHandle_Completes(t *testing.T) {
	h := newHandler(t, &stubDecoder{})
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 1, TaskType, map[string]interface{}{"text": page}))

	completed := client.Completed(t)
	require.Len(t, completed, 1)
	assert.Equal(t, false, completed[0]["extractionFailed"])
	fields := completed[0]["fields"].(map[string]interface{})
	assert.Equal(t, "Jordan Smith", fields["ownerName"])
}

func TestHandle_MissingDocumentThrows(t *testing.T) {
	h := newHandler(t, &stubDecoder{})
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 2, TaskType, map[string]interface{}{"fileName": "x.pdf"}))

	assert.Empty(t, client.Completed(t))
	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "INPUT_VALIDATION_FAILED", client.Thrown()[0].ErrorCode)
}
