// internal/workers/submission/render-submission-emails/models.go
package rendersubmissionemails

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	ApplicationID string   `json:"applicationId"`
	LenderIDs     []string `json:"lenderIds"`
}

type Output struct {
	Emails        []models.SubmissionEmail `json:"emails"`
	UsedDefault   bool                     `json:"usedDefaultTemplate"`
	MissingEmails []string                 `json:"missingEmails"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId", "lenderIds"},
		Properties: map[string]validation.Property{
			"applicationId": {Type: "string", MinLength: validation.Int(1)},
			"lenderIds": {
				Type:     "array",
				Items:    &validation.Property{Type: "string", MinLength: validation.Int(1)},
				MinItems: validation.Int(1),
			},
		},
	}
}
