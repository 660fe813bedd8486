package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const sampleApplication = `
	Business Name: Acme Widgets LLC
	Owner Name: Jane Doe
	Email: jane@acme.com
	Phone: 555-123-4567
	Address: 100 Main St, Springfield, IL 62704
	Federal Tax ID #: 12-3456789
	Industry: Retail
	Years in Business: 5
	Number of Employees: 12
	Annual Revenue: $1,200,000
	Existing Debt: $25,000
	Credit Score: 720
	Amount Requested: $150,000
`

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
}

// ==========================
// Extraction Tests
// ==========================

func TestExtract_FullApplication(t *testing.T) {
	fields := Extract(sampleApplication)

	expected := map[string]string{
		FieldBusinessName:           "Acme Widgets LLC",
		FieldOwnerName:              "Jane Doe",
		FieldEmail:                  "jane@acme.com",
		FieldPhone:                  "(555) 123-4567",
		FieldAddress:                "100 Main St, Springfield, IL 62704",
		FieldEIN:                    "12-3456789",
		FieldBusinessType:           "LLC",
		FieldIndustry:               "Retail",
		FieldYearsInBusiness:        "5",
		FieldNumberOfEmployees:      "12",
		FieldAnnualRevenue:          "1200000",
		FieldAverageMonthlyRevenue:  "100000",
		FieldAverageMonthlyDeposits: "",
		FieldExistingDebt:           "25000",
		FieldCreditScore:            "720",
		FieldRequestedAmount:        "150000",
	}

	for field, want := range expected {
		assert.Equal(t, want, fields[field], field)
	}
	assert.Equal(t, 15, fields.Found())
}

func TestExtract_EIN(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labelled with dash", "EIN: 12-3456789", "12-3456789"},
		{"nine digits reformatted", "Federal Tax ID # 123456789", "12-3456789"},
		{"tax id label", "Tax ID # 98-7654321", "98-7654321"},
		{"bare dashed number", "reference 45-1234567 on file", "45-1234567"},
		{"absent", "no identifiers here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text)[FieldEIN])
		})
	}
}

func TestExtract_Phone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labelled", "Cell: (312) 555-0199", "(312) 555-0199"},
		{"dotted", "Telephone 312.555.0199", "(312) 555-0199"},
		{"unlabelled", "call 3125550199 anytime", "(312) 555-0199"},
		{"absent", "Business Name: Quiet Shop", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text)[FieldPhone])
		})
	}
}

func TestExtract_NeverFailsOnEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		fields := Extract(text)
		require.Len(t, fields, len(FieldNames))
		assert.Equal(t, 0, fields.Found())
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	text := "Business DBA Name: Corner Cafe Company Name: Corner Holdings Inc"
	assert.Equal(t, "Corner Cafe", Extract(text)[FieldBusinessName])
}

func TestExtract_BareNameSkipsBusinessLabel(t *testing.T) {
	text := "Business Name: Acme Co Name: John Smith Title: CEO"
	fields := Extract(text)

	assert.Equal(t, "Acme Co", fields[FieldBusinessName])
	assert.Equal(t, "John Smith", fields[FieldOwnerName])
}

func TestExtract_KeywordFallbacks(t *testing.T) {
	fields := Extract("We are a family run restaurant organized as a partnership.")

	assert.Equal(t, "Restaurant", fields[FieldIndustry])
	assert.Equal(t, "Partnership", fields[FieldBusinessType])
}

// ==========================
// Inference Tests
// ==========================

func TestExtract_Inference(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
		want  string
	}{
		{"llc token inside a word", "Registered as AcmeLLC of Ohio", FieldBusinessType, "LLC"},
		{"founded year", "Company Name: Old Mill Founded: 2015", FieldYearsInBusiness, "10"},
		{"established year", "Established 2020", FieldYearsInBusiness, "5"},
		{"explicit years beat founded year", "Years in Business: 3 Founded 2001", FieldYearsInBusiness, "3"},
		{"monthly from annual", "Annual Revenue: $100,000", FieldAverageMonthlyRevenue, "8333"},
		{"monthly rounds half up", "Annual Sales: 100006", FieldAverageMonthlyRevenue, "8334"},
		{"explicit monthly kept", "Annual Revenue: 120000 Monthly Revenue: 9,500", FieldAverageMonthlyRevenue, "9500"},
		{"future year ignored", "Founded 2031", FieldYearsInBusiness, ""},
	}

	extractor := NewExtractor(WithClock(fixedClock(2025)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.Extract(tt.text)[tt.field])
		})
	}
}

// ==========================
// Idempotence Tests
// ==========================

func TestExtract_IdempotentOnNormalizedText(t *testing.T) {
	first := Extract(sampleApplication)
	second := Extract(Normalize(sampleApplication))
	assert.Equal(t, first, second)
}

func TestExtract_IdempotentOnOwnOutput(t *testing.T) {
	first := Extract(sampleApplication)

	relabelled := map[string]string{
		FieldEIN:             "EIN: ",
		FieldPhone:           "Phone: ",
		FieldAnnualRevenue:   "Annual Revenue: ",
		FieldCreditScore:     "Credit Score: ",
		FieldRequestedAmount: "Amount Requested: ",
		FieldBusinessName:    "Business Name: ",
	}

	for field, label := range relabelled {
		again := Extract(label + first[field])
		assert.Equal(t, first[field], again[field], field)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a \n\n b\t\tc  "))
}
