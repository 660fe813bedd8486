// internal/workers/infrastructure/manage-email-template/models.go
package manageemailtemplate

import "mca-workers/internal/common/validation"

type Action string

const (
	ActionGet   Action = "get"
	ActionSet   Action = "set"
	ActionReset Action = "reset"
)

type Input struct {
	Action   Action `json:"action"`
	Template string `json:"template,omitempty"`
}

type Output struct {
	Template            string   `json:"template"`
	IsDefault           bool     `json:"isDefault"`
	UnknownPlaceholders []string `json:"unknownPlaceholders"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"action"},
		Properties: map[string]validation.Property{
			"action":   {Type: "string", Enum: []string{string(ActionGet), string(ActionSet), string(ActionReset)}},
			"template": {Type: "string"},
		},
	}
}
