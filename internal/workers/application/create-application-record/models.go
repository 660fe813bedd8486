// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	Application models.ApplicantProfile  `json:"application"`
	Status      models.ApplicationStatus `json:"status"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
	Indexed           bool   `json:"indexed"`
}

// NewDealPayload is posted to the new-deal endpoint after the record exists.
type NewDealPayload struct {
	ApplicationID   string  `json:"applicationId"`
	BusinessName    string  `json:"businessName"`
	OwnerName       string  `json:"ownerName"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Industry        string  `json:"industry"`
	RequestedAmount float64 `json:"requestedAmount"`
	CreditScore     int     `json:"creditScore"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
}

func GetInputSchema() validation.JSONSchema {
	statuses := make([]string, 0, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		statuses = append(statuses, string(s))
	}
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"application"},
		Properties: map[string]validation.Property{
			"application": {Type: "object", Required: []string{"businessName", "ownerName"}},
			"status":      {Type: "string", Enum: statuses},
		},
	}
}
