package extraction

// Field names the extractor fills. They match the applicant profile JSON keys
// except the revenue and deposit fields, which keep their form labels.
const (
	FieldBusinessName           = "businessName"
	FieldOwnerName              = "ownerName"
	FieldEmail                  = "email"
	FieldPhone                  = "phone"
	FieldAddress                = "address"
	FieldEIN                    = "ein"
	FieldBusinessType           = "businessType"
	FieldIndustry               = "industry"
	FieldYearsInBusiness        = "yearsInBusiness"
	FieldNumberOfEmployees      = "numberOfEmployees"
	FieldAnnualRevenue          = "annualRevenue"
	FieldAverageMonthlyRevenue  = "averageMonthlyRevenue"
	FieldAverageMonthlyDeposits = "averageMonthlyDeposits"
	FieldExistingDebt           = "existingDebt"
	FieldCreditScore            = "creditScore"
	FieldRequestedAmount        = "requestedAmount"
)

// FieldNames lists every target field in extraction order.
var FieldNames = []string{
	FieldBusinessName,
	FieldOwnerName,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldEIN,
	FieldBusinessType,
	FieldIndustry,
	FieldYearsInBusiness,
	FieldNumberOfEmployees,
	FieldAnnualRevenue,
	FieldAverageMonthlyRevenue,
	FieldAverageMonthlyDeposits,
	FieldExistingDebt,
	FieldCreditScore,
	FieldRequestedAmount,
}

// Fields maps each field name to its extracted value; "" means not found.
type Fields map[string]string

func newFields() Fields {
	f := make(Fields, len(FieldNames))
	for _, name := range FieldNames {
		f[name] = ""
	}
	return f
}

// Found returns the number of non-empty fields.
func (f Fields) Found() int {
	n := 0
	for _, name := range FieldNames {
		if f[name] != "" {
			n++
		}
	}
	return n
}

// Kind selects the cleanup applied to a captured value.
type Kind int

const (
	KindText Kind = iota
	KindMoney
	KindNumber
	KindPhone
	KindEIN
	KindBusinessType
	KindIndustry
)
