// internal/workers/lender/qualify-lenders/models.go
package qualifylenders

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

// Input names the applicant either inline or by stored id. An inline
// profile wins when both are given.
type Input struct {
	Application   *models.ApplicantProfile `json:"application,omitempty"`
	ApplicationID string                   `json:"applicationId,omitempty"`
	// StatusFilter restricts the lender set; empty scores every lender.
	StatusFilter models.LenderStatus `json:"statusFilter,omitempty"`
}

type Output struct {
	Matches        []models.MatchResult `json:"matches"`
	QualifiedCount int                  `json:"qualifiedCount"`
	TotalLenders   int                  `json:"totalLenders"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"application":   {Type: "object"},
			"applicationId": {Type: "string", MinLength: validation.Int(1)},
			"statusFilter": {
				Type: "string",
				Enum: []string{
					string(models.LenderStatusActive),
					string(models.LenderStatusInactive),
					string(models.LenderStatusPending),
				},
			},
		},
		AnyOf: []validation.Requirement{
			{Required: []string{"application"}},
			{Required: []string{"applicationId"}},
		},
	}
}
