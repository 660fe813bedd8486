// Package templates stores the lender submission email template and
// renders it per lender.
package templates

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mca-workers/internal/models"
)

const DefaultTemplate = `Subject: Merchant Cash Advance Application - {{businessName}}

Dear {{lenderName}} Team,

Please find below a merchant cash advance application submitted for your review.

BUSINESS INFORMATION:
• Business Name: {{businessName}}
• Owner: {{ownerName}}
• Industry: {{industry}}
• Years in Business: {{yearsInBusiness}}
• Business Type: {{businessType}}
• EIN: {{ein}}

FINANCIAL DETAILS:
• Requested Amount: ${{requestedAmount}}
• Monthly Revenue: ${{monthlyRevenue}}
• Annual Revenue: ${{annualRevenue}}
• Credit Score: {{creditScore}}
• Existing Debt: ${{existingDebt}}

CONTACT INFORMATION:
• Email: {{email}}
• Phone: {{phone}}
• Address: {{address}}

Your published guidelines for reference:
• Amount Range: ${{lenderMinAmount}} - ${{lenderMaxAmount}}
• Factor Rate: {{lenderFactorRate}}
• Payback Term: {{lenderPaybackTerm}}
• Approval Time: {{lenderApprovalTime}}

Supporting documents (bank statements, tax returns, signed application and a
voided business check) are available on request.

Best regards,
{{ownerName}}
{{businessName}}
{{email}}
{{phone}}

---
Application ID: {{applicationId}}`

// Placeholders lists every token Render substitutes.
var Placeholders = []string{
	"businessName", "ownerName", "industry", "yearsInBusiness", "businessType", "ein",
	"requestedAmount", "monthlyRevenue", "annualRevenue", "creditScore", "existingDebt",
	"email", "phone", "address",
	"lenderName", "lenderMinAmount", "lenderMaxAmount", "lenderFactorRate",
	"lenderPaybackTerm", "lenderApprovalTime",
	"applicationId",
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z]+)\s*\}\}`)

type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Render substitutes the known placeholders literally. Unknown tokens are
// left in place. A first line of the form "Subject: ..." becomes the subject.
func Render(tmpl string, app models.Application, lender models.Lender) Email {
	r := strings.NewReplacer(
		"{{businessName}}", app.BusinessName,
		"{{ownerName}}", app.OwnerName,
		"{{industry}}", app.Industry,
		"{{yearsInBusiness}}", strconv.FormatFloat(app.YearsInBusiness, 'f', -1, 64),
		"{{businessType}}", app.BusinessType,
		"{{ein}}", app.EIN,
		"{{requestedAmount}}", FormatMoney(app.RequestedAmount),
		"{{monthlyRevenue}}", FormatMoney(app.MonthlyRevenue),
		"{{annualRevenue}}", FormatMoney(app.AnnualRevenue),
		"{{creditScore}}", strconv.Itoa(app.CreditScore),
		"{{existingDebt}}", FormatMoney(app.ExistingDebt),
		"{{email}}", app.Email,
		"{{phone}}", app.Phone,
		"{{address}}", app.Address,
		"{{lenderName}}", lender.Name,
		"{{lenderMinAmount}}", FormatMoney(lender.MinAmount),
		"{{lenderMaxAmount}}", FormatMoney(lender.MaxAmount),
		"{{lenderFactorRate}}", lender.FactorRate,
		"{{lenderPaybackTerm}}", lender.PaybackTerm,
		"{{lenderApprovalTime}}", lender.ApprovalTime,
		"{{applicationId}}", app.ID,
	)
	return splitSubject(r.Replace(tmpl))
}

func splitSubject(text string) Email {
	first, rest, _ := strings.Cut(text, "\n")
	trimmed := strings.TrimSpace(first)
	if len(trimmed) >= len("subject:") && strings.EqualFold(trimmed[:len("subject:")], "subject:") {
		return Email{
			Subject: strings.TrimSpace(trimmed[len("subject:"):]),
			Body:    strings.TrimLeft(rest, "\r\n"),
		}
	}
	return Email{Body: text}
}

// FormatMoney groups the integer part in thousands and keeps up to two
// decimals, e.g. 1234567.5 => "1,234,567.5".
func FormatMoney(v float64) string {
	neg := v < 0
	v = math.Abs(v)
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// UnknownPlaceholders reports tokens in tmpl that Render will not replace.
func UnknownPlaceholders(tmpl string) []string {
	known := make(map[string]bool, len(Placeholders))
	for _, p := range Placeholders {
		known[p] = true
	}

	seen := map[string]bool{}
	var unknown []string
	for _, m := range tokenPattern.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if !known[name] && !seen[name] {
			seen[name] = true
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
