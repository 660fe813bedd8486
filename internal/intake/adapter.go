// Package intake turns inbound form-filler events into draft field values.
package intake

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mca-workers/internal/extraction"
	"mca-workers/internal/models"
)

// EventTypeWebhookResponse is the only event type the adapter accepts.
const EventTypeWebhookResponse = "webhook-response"

var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrUnsupportedEvent = errors.New("unsupported event type")
)

// Event is one inbound message from an external form filler.
type Event struct {
	Origin  string                 `json:"origin"`
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// wrappers are tried in order; the first object-valued one holds the fields.
var wrappers = []string{"extractedData", "data", "fields", "formData", "values"}

var (
	nonDigits     = regexp.MustCompile(`[^0-9]`)
	nonDecimal    = regexp.MustCompile(`[^0-9.]`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]+`)
	keySeparator  = regexp.MustCompile(`[\s_]+`)
	trailingColon = regexp.MustCompile(`:+$`)
)

type fieldSpec struct {
	name    string
	aliases []string
	clean   func(string) string
}

func digitsOnly(v string) string  { return nonDigits.ReplaceAllString(v, "") }
func decimalOnly(v string) string { return nonDecimal.ReplaceAllString(v, "") }

func toIndustry(v string) string     { return MapToOption(v, models.Industries) }
func toBusinessType(v string) string { return MapToOption(v, models.BusinessTypes) }

var fieldSpecs = []fieldSpec{
	{extraction.FieldBusinessName, []string{"Business Name", "businessName", "company", "Company Name"}, nil},
	{extraction.FieldOwnerName, []string{"Owner Name", "ownerName", "name", "Full Name"}, nil},
	{extraction.FieldEmail, []string{"Email", "email_address", "emailAddress", "contact_email"}, nil},
	{extraction.FieldPhone, []string{"Phone", "phone_number", "phoneNumber", "contact_phone", "telephone"}, nil},
	{extraction.FieldAddress, []string{"Business Address", "businessAddress", "address", "location"}, nil},
	{extraction.FieldEIN, []string{"EIN", "tax_id", "taxId", "employer_identification_number"}, nil},
	{extraction.FieldBusinessType, []string{"Business Type", "businessType", "company_type", "entity_type"}, toBusinessType},
	{extraction.FieldIndustry, []string{"Industry", "business_industry", "sector", "business_sector"}, toIndustry},
	{extraction.FieldYearsInBusiness, []string{"Years in Business", "business_age", "company_age"}, decimalOnly},
	{extraction.FieldNumberOfEmployees, []string{"Number of Employees", "employee_count", "staff_count"}, digitsOnly},
	{extraction.FieldAnnualRevenue, []string{"Annual Revenue", "yearly_revenue", "revenue"}, decimalOnly},
	{extraction.FieldAverageMonthlyRevenue, []string{"Average Monthly Revenue", "monthly_revenue"}, decimalOnly},
	{extraction.FieldAverageMonthlyDeposits, []string{"Average Monthly Deposits", "monthly_deposits"}, decimalOnly},
	{extraction.FieldExistingDebt, []string{"Existing Debt", "current_debt", "debt"}, decimalOnly},
	{extraction.FieldCreditScore, []string{"Credit Score", "fico_score", "credit_rating"}, digitsOnly},
	{extraction.FieldRequestedAmount, []string{"Requested Amount", "loan_amount", "funding_amount"}, decimalOnly},
}

// Adapter validates inbound events and maps their payloads onto draft fields.
type Adapter struct {
	allowed map[string]bool
}

// NewAdapter accepts events only from the listed origins; an empty list
// accepts none.
func NewAdapter(allowedOrigins []string) *Adapter {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return &Adapter{allowed: allowed}
}

// Normalize returns the recognized, cleaned field values carried by ev.
// Fields absent from the payload, or empty after cleaning, are omitted.
func (a *Adapter) Normalize(ev Event) (map[string]string, error) {
	if !a.allowed[strings.TrimRight(ev.Origin, "/")] {
		return nil, fmt.Errorf("%w: %q", ErrOriginNotAllowed, ev.Origin)
	}
	if ev.Type != EventTypeWebhookResponse {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, ev.Type)
	}

	index := indexPayload(ev.Payload)
	out := map[string]string{}
	for _, spec := range fieldSpecs {
		value, ok := lookup(index, spec)
		if !ok {
			continue
		}
		if spec.clean != nil {
			value = spec.clean(value)
		}
		if strings.TrimSpace(value) != "" {
			out[spec.name] = value
		}
	}
	return out, nil
}

// indexPayload builds a normalized-key index of every primitive value in the
// payload. Values inside the first wrapper object win over values found by
// flattening the whole payload.
func indexPayload(payload map[string]interface{}) map[string]string {
	index := map[string]string{}

	for _, w := range wrappers {
		if inner, ok := payload[w].(map[string]interface{}); ok {
			for _, k := range sortedKeys(inner) {
				if s, ok := scalar(inner[k]); ok {
					index[NormalizeKey(k)] = s
				}
			}
			break
		}
	}

	flat := map[string]string{}
	flatten(payload, "", flat)
	for _, k := range sortedFlatKeys(flat) {
		nk := NormalizeKey(k)
		if _, taken := index[nk]; !taken {
			index[nk] = flat[k]
		}
	}
	return index
}

// flatten records each leaf under both its dotted path and its own key.
func flatten(obj map[string]interface{}, prefix string, out map[string]string) {
	for _, k := range sortedKeys(obj) {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := obj[k].(map[string]interface{}); ok {
			flatten(nested, path, out)
			continue
		}
		if s, ok := scalar(obj[k]); ok {
			out[path] = s
			if _, taken := out[k]; !taken {
				out[k] = s
			}
		}
	}
}

func lookup(index map[string]string, spec fieldSpec) (string, bool) {
	names := append([]string{spec.name}, spec.aliases...)
	for _, name := range names {
		if v, ok := index[NormalizeKey(name)]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

func scalar(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// NormalizeKey folds case, a trailing colon, spaces and underscores, so
// "Business Name:" and "business_name" compare equal.
func NormalizeKey(k string) string {
	k = trailingColon.ReplaceAllString(strings.TrimSpace(k), "")
	return keySeparator.ReplaceAllString(strings.ToLower(k), "")
}

func normWords(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}

// MapToOption picks the option matching value: exact after normalization,
// else the first option with the largest word overlap, else "Other" when
// offered, else the first option.
func MapToOption(value string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	v := normWords(value)
	for _, opt := range options {
		if normWords(opt) == v {
			return opt
		}
	}

	words := map[string]bool{}
	for _, w := range strings.Fields(v) {
		words[w] = true
	}
	best, bestScore := "", 0
	for _, opt := range options {
		score := 0
		for _, w := range strings.Fields(normWords(opt)) {
			if words[w] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = opt, score
		}
	}
	if bestScore > 0 {
		return best
	}
	for _, opt := range options {
		if opt == "Other" {
			return opt
		}
	}
	return options[0]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFlatKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
