// internal/workers/application/update-application-record/models.go
package updateapplicationrecord

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	ApplicationID string                  `json:"applicationId"`
	Patch         models.ApplicationPatch `json:"patch"`
}

type Output struct {
	Application models.Application `json:"application"`
	Indexed     bool               `json:"indexed"`
}

func GetInputSchema() validation.JSONSchema {
	statuses := make([]string, 0, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		statuses = append(statuses, string(s))
	}
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId", "patch"},
		Properties: map[string]validation.Property{
			"applicationId": {Type: "string", MinLength: validation.Int(1)},
			"patch": {
				Type: "object",
				Properties: map[string]validation.Property{
					"status":      {Type: "string", Enum: statuses},
					"creditScore": {Type: "integer", Minimum: validation.Float(300), Maximum: validation.Float(850)},
				},
			},
		},
	}
}
