// internal/workers/submission/create-lender-submissions/models.go
package createlendersubmissions

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	ApplicationID string   `json:"applicationId"`
	LenderIDs     []string `json:"lenderIds"`
}

type Output struct {
	Submissions     []models.LenderSubmission `json:"submissions"`
	SubmissionCount int                       `json:"submissionCount"`
}

// lenderIds is not required here; an empty selection is a business error
// the process model handles, not malformed input.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId"},
		Properties: map[string]validation.Property{
			"applicationId": {Type: "string", MinLength: validation.Int(1)},
			"lenderIds":     {Type: "array", Items: &validation.Property{Type: "string", MinLength: validation.Int(1)}},
		},
	}
}
