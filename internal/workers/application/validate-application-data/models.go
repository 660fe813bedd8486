// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	Application map[string]interface{} `json:"application"`
}

type Output struct {
	IsValid          bool                     `json:"isValid"`
	ValidationErrors []validation.FieldError  `json:"validationErrors"`
	Application      *models.ApplicantProfile `json:"application"`
}

// numeric fields that must be present, as opposed to merely non-negative
var requiredNumbers = []string{"yearsInBusiness", "requestedAmount", "monthlyRevenue", "creditScore"}

// draft and form field names that differ from the profile's
var fieldAliases = map[string]string{
	"averageMonthlyRevenue":  "monthlyRevenue",
	"averageMonthlyDeposits": "monthlyDeposits",
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"application"},
		Properties: map[string]validation.Property{
			"application": {Type: "object", Description: "Draft or form values keyed by field name"},
		},
	}
}
