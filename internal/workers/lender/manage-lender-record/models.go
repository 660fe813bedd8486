// internal/workers/lender/manage-lender-record/models.go
package managelenderrecord

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Input struct {
	Action   Action         `json:"action"`
	LenderID string         `json:"lenderId,omitempty"`
	Lender   *models.Lender `json:"lender,omitempty"`
}

type Output struct {
	Lender  *models.Lender `json:"lender,omitempty"`
	Deleted bool           `json:"deleted"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"action"},
		Properties: map[string]validation.Property{
			"action":   {Type: "string", Enum: []string{string(ActionCreate), string(ActionUpdate), string(ActionDelete)}},
			"lenderId": {Type: "string", MinLength: validation.Int(1)},
			"lender":   {Type: "object"},
		},
	}
}
