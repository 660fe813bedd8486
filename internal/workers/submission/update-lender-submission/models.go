// internal/workers/submission/update-lender-submission/models.go
package updatelendersubmission

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	SubmissionID string                 `json:"submissionId"`
	Patch        models.SubmissionPatch `json:"patch"`
}

type Output struct {
	Submission models.LenderSubmission `json:"submission"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"submissionId", "patch"},
		Properties: map[string]validation.Property{
			"submissionId": {Type: "string", MinLength: validation.Int(1)},
			"patch": {
				Type: "object",
				Properties: map[string]validation.Property{
					"status": {Type: "string", Enum: []string{
						string(models.SubmissionStatusPending),
						string(models.SubmissionStatusApproved),
						string(models.SubmissionStatusDeclined),
						string(models.SubmissionStatusCounterOffer),
						string(models.SubmissionStatusFunded),
					}},
					"offeredAmount": {Type: "number", Minimum: validation.Float(0)},
					"factorRate":    {Type: "number", Minimum: validation.Float(1)},
				},
			},
		},
	}
}
