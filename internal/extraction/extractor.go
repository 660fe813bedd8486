// Package extraction turns the text layer of an uploaded application document
// into a flat draft of applicant fields.
package extraction

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mca-workers/internal/models"
)

var (
	whitespace    = regexp.MustCompile(`\s+`)
	nonDigits     = regexp.MustCompile(`[^\d]`)
	moneyNoise    = regexp.MustCompile(`[,$]`)
	foundedYear   = regexp.MustCompile(`(?i)(?:established|started|founded)[:\s]*(\d{4})`)
	precedingWord = regexp.MustCompile(`([A-Za-z]+)\W*$`)
)

var businessTypeAliases = map[string]string{
	"llc":                 "LLC",
	"corporation":         "Corporation",
	"c-corp":              "Corporation",
	"partnership":         "Partnership",
	"sole proprietorship": "Sole Proprietorship",
	"s-corp":              "S-Corporation",
	"s-corporation":       "S-Corporation",
}

// Extractor applies a rule table to normalized document text.
type Extractor struct {
	rules []FieldRule
	now   func() time.Time
}

type Option func(*Extractor)

// WithClock overrides the clock used to turn a founding year into years in business.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithRules replaces the default rule table.
func WithRules(rules []FieldRule) Option {
	return func(e *Extractor) { e.rules = rules }
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{rules: DefaultRules, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract runs the default extractor. It never fails; missing fields are "".
func Extract(rawText string) Fields {
	return defaultExtractor.Extract(rawText)
}

func (e *Extractor) Extract(rawText string) Fields {
	text := Normalize(rawText)
	fields := newFields()

	for _, rule := range e.rules {
		for _, pattern := range rule.Patterns {
			raw, ok := pattern.find(text)
			if !ok {
				continue
			}
			if value := clean(rule.Kind, raw); value != "" {
				fields[rule.Field] = value
				break
			}
		}
	}

	e.infer(text, fields)
	return fields
}

// Normalize collapses runs of whitespace to one space and trims the result.
func Normalize(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func (p Pattern) find(text string) (string, bool) {
	if len(p.SkipAfter) == 0 {
		m := p.Expr.FindStringSubmatch(text)
		if len(m) < 2 || strings.TrimSpace(m[1]) == "" {
			return "", false
		}
		return m[1], true
	}

	// Greedy captures run to the end of the text, so a skipped match is
	// retried one byte further on instead of continuing after it.
	for offset := 0; offset < len(text); {
		idx := p.Expr.FindStringSubmatchIndex(text[offset:])
		if idx == nil {
			break
		}
		start := offset + idx[0]
		midWord := idx[0] == 0 && offset > 0 && text[offset-1] != ' '
		if idx[2] >= 0 && !midWord && !p.skipped(text[:start]) {
			if v := text[offset+idx[2] : offset+idx[3]]; strings.TrimSpace(v) != "" {
				return v, true
			}
		}
		offset = start + 1
	}
	return "", false
}

func (p Pattern) skipped(before string) bool {
	m := precedingWord.FindStringSubmatch(before)
	if m == nil {
		return false
	}
	word := strings.ToLower(m[1])
	for _, skip := range p.SkipAfter {
		if word == skip {
			return true
		}
	}
	return false
}

func clean(kind Kind, raw string) string {
	value := whitespace.ReplaceAllString(strings.TrimSpace(raw), " ")

	switch kind {
	case KindText:
		return cutAtLabel(value)
	case KindMoney:
		return moneyNoise.ReplaceAllString(value, "")
	case KindNumber:
		return value
	case KindPhone:
		digits := nonDigits.ReplaceAllString(value, "")
		if len(digits) == 10 {
			return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
		}
		return digits
	case KindEIN:
		if len(value) == 9 {
			return value[:2] + "-" + value[2:]
		}
		return value
	case KindBusinessType:
		value = cutAtLabel(value)
		if canonical, ok := businessTypeAliases[strings.ToLower(value)]; ok {
			return canonical
		}
		return value
	case KindIndustry:
		value = cutAtLabel(value)
		for _, industry := range models.Industries {
			if strings.EqualFold(industry, value) {
				return industry
			}
		}
		return value
	}
	return value
}

func cutAtLabel(value string) string {
	if loc := labelBoundary.FindStringIndex(value); loc != nil {
		value = value[:loc[0]]
	}
	return strings.TrimSpace(value)
}

// infer fills still-empty fields from weaker signals in the text.
func (e *Extractor) infer(text string, fields Fields) {
	if fields[FieldBusinessType] == "" && strings.Contains(strings.ToLower(text), "llc") {
		fields[FieldBusinessType] = "LLC"
	}

	if fields[FieldYearsInBusiness] == "" {
		if m := foundedYear.FindStringSubmatch(text); m != nil {
			year, err := strconv.Atoi(m[1])
			if err == nil {
				if years := e.now().Year() - year; years >= 0 {
					fields[FieldYearsInBusiness] = strconv.Itoa(years)
				}
			}
		}
	}

	if fields[FieldAverageMonthlyRevenue] == "" && fields[FieldAnnualRevenue] != "" {
		annual, err := strconv.ParseInt(moneyNoise.ReplaceAllString(fields[FieldAnnualRevenue], ""), 10, 64)
		if err == nil {
			fields[FieldAverageMonthlyRevenue] = strconv.FormatInt(int64(math.Round(float64(annual)/12)), 10)
		}
	}
}
