package extraction

import (
	"regexp"
	"strings"
)

// Pattern is one candidate expression for a field. Group 1 must hold the
// value. A match whose preceding word is in SkipAfter is ignored, which keeps
// the bare "Name:" label from picking up "Business Name:".
type Pattern struct {
	Expr      *regexp.Regexp
	SkipAfter []string
}

// FieldRule is the ordered candidate list for one field, most specific first.
type FieldRule struct {
	Field    string
	Kind     Kind
	Patterns []Pattern
}

func p(expr string, skipAfter ...string) Pattern {
	return Pattern{Expr: regexp.MustCompile(`(?i)` + expr), SkipAfter: skipAfter}
}

// DefaultRules is the extraction table. Free text captures run to the end of
// the text and are cut at the next known label by cleanup.
var DefaultRules = []FieldRule{
	{FieldBusinessName, KindText, []Pattern{
		p(`business\s+dba\s+name[:\s]+(.+)`),
		p(`(?:business\s+name|company\s+name|legal\s+name)[:\s]+(.+)`),
		p(`(?:dba|doing\s+business\s+as)[:\s]+(.+)`),
	}},
	{FieldOwnerName, KindText, []Pattern{
		p(`(?:owner\s+name|principal\s+name|applicant\s+name)[:\s]+(.+)`),
		p(`(?:first\s+name\s+last\s+name|full\s+name)[:\s]+(.+)`),
		p(`(?:^|\s)name[:\s]+(.+)`, "business", "company", "legal", "dba", "owner", "principal", "applicant", "full", "bank", "file", "lender"),
	}},
	{FieldEmail, KindText, []Pattern{
		p(`(?:email|e-mail)[:\s]+([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
		p(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
	}},
	{FieldPhone, KindPhone, []Pattern{
		p(`(?:phone|telephone|cell|mobile)[:\s]*(\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4})`),
		p(`(\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4})`),
	}},
	{FieldAddress, KindText, []Pattern{
		p(`address\s+cty\s+state\s+zip[:\s]+(.+)`),
		p(`(?:business\s+address|address)[:\s]+(.+)`),
		p(`(?:street|address\s+line)[:\s]+(.+)`),
	}},
	{FieldEIN, KindEIN, []Pattern{
		p(`federal\s+tax\s+id\s*#[:\s]*(\d{2}-?\d{7})`),
		p(`(?:federal\s+tax\s+id|tax\s+id\s*#)[:\s]*(\d{2}-?\d{7})`),
		p(`(?:ein|tax\s+id|federal\s+id)[:\s]*(\d{2}-?\d{7})`),
		p(`(\d{2}-\d{7})`),
	}},
	{FieldBusinessType, KindBusinessType, []Pattern{
		p(`(?:business\s+type|entity\s+type|legal\s+structure)[:\s]+([^,]+)`),
		p(`\b(llc|corporation|partnership|sole\s+proprietorship|s-corp|c-corp)\b`),
	}},
	{FieldIndustry, KindIndustry, []Pattern{
		p(`(?:industry|nature\s+of\s+business)[:\s]+([^,]+)`),
		p(`\b(retail|restaurant|healthcare|construction|professional\s+services|transportation|manufacturing|technology|real\s+estate)\b`),
	}},
	{FieldYearsInBusiness, KindNumber, []Pattern{
		p(`(?:years\s+in\s+business|time\s+in\s+business)[:\s]*(\d+(?:\.\d+)?)`),
	}},
	{FieldNumberOfEmployees, KindNumber, []Pattern{
		p(`(?:number\s+of\s+employees|employees|staff\s+size)[:\s]*(\d+)`),
		p(`(\d+)\s+employees`),
	}},
	{FieldAnnualRevenue, KindMoney, []Pattern{
		p(`(?:annual\s+revenue|yearly\s+revenue|annual\s+sales)[:\s]*\$?([0-9,]+)`),
		p(`gross\s+revenue[:\s]*\$?([0-9,]+)`),
	}},
	{FieldAverageMonthlyRevenue, KindMoney, []Pattern{
		p(`(?:monthly\s+revenue|average\s+monthly\s+sales)[:\s]*\$?([0-9,]+)`),
		p(`monthly\s+gross[:\s]*\$?([0-9,]+)`),
	}},
	{FieldAverageMonthlyDeposits, KindMoney, []Pattern{
		p(`(?:monthly\s+deposits|average\s+monthly\s+deposits)[:\s]*\$?([0-9,]+)`),
		p(`bank\s+deposits[:\s]*\$?([0-9,]+)`),
	}},
	{FieldExistingDebt, KindMoney, []Pattern{
		p(`(?:existing\s+debt|current\s+debt|outstanding\s+debt)[:\s]*\$?([0-9,]+)`),
		p(`debt\s+balance[:\s]*\$?([0-9,]+)`),
	}},
	{FieldCreditScore, KindNumber, []Pattern{
		p(`(?:credit\s+score|fico\s+score|personal\s+credit)[:\s]*(\d{3})`),
		p(`score[:\s]*(\d{3})`),
	}},
	{FieldRequestedAmount, KindMoney, []Pattern{
		p(`amount\s+requested[:\s]*\$?([0-9,]+)`),
		p(`(?:requested\s+amount|loan\s+amount|funding\s+amount)[:\s]*\$?([0-9,]+)`),
		p(`(?:amount\s+needed|capital\s+needed)[:\s]*\$?([0-9,]+)`),
	}},
}

// labels end a free text capture when followed by ':' or '#'.
var labels = []string{
	`business\s+dba\s+name`, `business\s+name`, `company\s+name`, `legal\s+name`, `dba`,
	`owner\s+name`, `principal\s+name`, `applicant\s+name`, `full\s+name`, `name`, `title`,
	`e-?mail`, `phone`, `telephone`, `cell`, `mobile`, `fax`, `website`,
	`address\s+cty\s+state\s+zip`, `business\s+address`, `home\s+address`, `address`, `street`,
	`city`, `state`, `zip(?:\s+code)?`,
	`federal\s+tax\s+id`, `tax\s+id`, `ein`, `ssn`, `date\s+of\s+birth`, `dob`,
	`business\s+type`, `entity\s+type`, `legal\s+structure`, `industry`, `nature\s+of\s+business`,
	`years\s+in\s+business`, `time\s+in\s+business`, `established`, `started`, `founded`,
	`number\s+of\s+employees`, `employees`, `staff\s+size`,
	`annual\s+revenue`, `yearly\s+revenue`, `annual\s+sales`, `gross\s+revenue`,
	`monthly\s+revenue`, `average\s+monthly\s+sales`, `monthly\s+gross`,
	`(?:average\s+)?monthly\s+deposits`, `bank\s+deposits`,
	`existing\s+debt`, `current\s+debt`, `outstanding\s+debt`, `debt\s+balance`,
	`credit\s+score`, `fico\s+score`, `personal\s+credit`,
	`amount\s+requested`, `requested\s+amount`, `loan\s+amount`, `funding\s+amount`,
	`amount\s+needed`, `capital\s+needed`, `use\s+of\s+funds`, `ownership(?:\s+%)?`, `signature`, `date`,
}

var labelBoundary = regexp.MustCompile(`(?i)\s(?:` + strings.Join(labels, "|") + `)\s*[:#]`)
