// internal/workers/application/delete-application-record/models.go
package deleteapplicationrecord

import "mca-workers/internal/common/validation"

type Input struct {
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	Deleted bool `json:"deleted"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId"},
		Properties: map[string]validation.Property{
			"applicationId": {Type: "string", MinLength: validation.Int(1)},
		},
	}
}
