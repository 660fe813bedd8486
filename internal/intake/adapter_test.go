package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const origin = "https://forms.mca-broker.example"

func newAdapter() *Adapter {
	return NewAdapter([]string{origin + "/"})
}

// ==========================
// Capability checks
// ==========================

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		adapter *Adapter
		event   Event
		wantErr error
	}{
		{
			name:    "unknown origin",
			adapter: newAdapter(),
			event:   Event{Origin: "https://evil.example", Type: EventTypeWebhookResponse},
			wantErr: ErrOriginNotAllowed,
		},
		{
			name:    "empty allow list accepts nothing",
			adapter: NewAdapter(nil),
			event:   Event{Origin: origin, Type: EventTypeWebhookResponse},
			wantErr: ErrOriginNotAllowed,
		},
		{
			name:    "wrong event type",
			adapter: newAdapter(),
			event:   Event{Origin: origin, Type: "resize"},
			wantErr: ErrUnsupportedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.adapter.Normalize(tt.event)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ==========================
// Payload shapes
// ==========================

func TestNormalize_LabelledWrapper(t *testing.T) {
	ev := Event{
		Origin: origin,
		Type:   EventTypeWebhookResponse,
		Payload: map[string]interface{}{
			"extractedData": map[string]interface{}{
				"Business Name:":      "Acme Bakery LLC",
				"Owner Name":          "Jordan Smith",
				"Credit Score":        "680 (Experian)",
				"Requested Amount":    "$75,000",
				"Number of Employees": "12 FT",
				"Industry":            "food service restaurant",
				"Business Type":       "llc",
				"Years in Business":   "4.5 yrs",
				"Existing Debt":       "",
			},
		},
	}

	fields, err := newAdapter().Normalize(ev)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"businessName":      "Acme Bakery LLC",
		"ownerName":         "Jordan Smith",
		"creditScore":       "680",
		"requestedAmount":   "75000",
		"numberOfEmployees": "12",
		"industry":          "Restaurant",
		"businessType":      "LLC",
		"yearsInBusiness":   "4.5",
	}, fields)
}

func TestNormalize_SnakeCaseNestedAndNumbers(t *testing.T) {
	ev := Event{
		Origin: origin,
		Type:   EventTypeWebhookResponse,
		Payload: map[string]interface{}{
			"meta": map[string]interface{}{"source": "n8n"},
			"applicant": map[string]interface{}{
				"contact": map[string]interface{}{
					"email_address": "jordan@acme.test",
					"telephone":     "555-123-4567",
				},
				"loan_amount": 50000.0,
				"fico_score":  712.0,
				"sector":      "mining",
			},
		},
	}

	fields, err := newAdapter().Normalize(ev)
	require.NoError(t, err)

	assert.Equal(t, "jordan@acme.test", fields["email"])
	assert.Equal(t, "555-123-4567", fields["phone"])
	assert.Equal(t, "50000", fields["requestedAmount"])
	assert.Equal(t, "712", fields["creditScore"])
	assert.Equal(t, "Other", fields["industry"])
	assert.NotContains(t, fields, "businessName")
}

func TestNormalize_WrapperWinsOverFlattened(t *testing.T) {
	ev := Event{
		Origin: origin,
		Type:   EventTypeWebhookResponse,
		Payload: map[string]interface{}{
			"data":  map[string]interface{}{"email": "wrapper@acme.test"},
			"other": map[string]interface{}{"email": "flat@acme.test"},
		},
	}

	fields, err := newAdapter().Normalize(ev)
	require.NoError(t, err)
	assert.Equal(t, "wrapper@acme.test", fields["email"])
}

func TestNormalize_EmptyPayload(t *testing.T) {
	fields, err := newAdapter().Normalize(Event{Origin: origin, Type: EventTypeWebhookResponse})
	require.NoError(t, err)
	assert.Empty(t, fields)
}

// ==========================
// Helpers
// ==========================

func TestNormalizeKey(t *testing.T) {
	for _, k := range []string{"Business Name:", " business_name ", "businessName", "BUSINESS NAME::"} {
		assert.Equal(t, "businessname", NormalizeKey(k), k)
	}
}

func TestMapToOption(t *testing.T) {
	options := []string{"Retail", "Professional Services", "Real Estate", "Other"}

	tests := []struct {
		in   string
		want string
	}{
		{"retail", "Retail"},
		{"REAL-ESTATE", "Real Estate"},
		{"legal services", "Professional Services"},
		{"aerospace", "Other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapToOption(tt.in, options), tt.in)
	}

	assert.Equal(t, "Sole Proprietorship", MapToOption("co-op", []string{"Sole Proprietorship", "LLC"}))
	assert.Equal(t, "", MapToOption("x", nil))
}
