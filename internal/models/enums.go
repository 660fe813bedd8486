// internal/models/enums.go
package models

// AllIndustries is the lender-side wildcard accepting any applicant industry.
const AllIndustries = "All Industries"

var Industries = []string{
	"Retail",
	"Restaurant",
	"Healthcare",
	"Construction",
	"Professional Services",
	"Transportation",
	"Manufacturing",
	"Technology",
	"Real Estate",
	"Other",
}

var BusinessTypes = []string{
	"Sole Proprietorship",
	"Partnership",
	"LLC",
	"Corporation",
	"S-Corporation",
}

func IsIndustry(v string) bool {
	return contains(Industries, v)
}

func IsBusinessType(v string) bool {
	return contains(BusinessTypes, v)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
