// internal/workers/submission/notify-deal-update/models.go
package notifydealupdate

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	DealDetails models.DealDetails `json:"dealDetails"`
}

type Output struct {
	Delivered bool   `json:"delivered"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"notificationError,omitempty"`
	SentAt    string `json:"sentAt"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"dealDetails"},
		Properties: map[string]validation.Property{
			"dealDetails": {
				Type:     "object",
				Required: []string{"applicationId"},
				Properties: map[string]validation.Property{
					"applicationId":    {Type: "string", MinLength: validation.Int(1)},
					"hasBankruptcies":  {Type: "boolean"},
					"hasOpenJudgments": {Type: "boolean"},
				},
			},
		},
	}
}
