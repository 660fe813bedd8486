// internal/models/notification.go
package models

import "time"

// NotificationEndpoint names one of the outbound notification targets.
type NotificationEndpoint string

const (
	EndpointNewDeal              NotificationEndpoint = "new-deal"
	EndpointUpdatingApplications NotificationEndpoint = "updating-applications"
)

type NotificationResult struct {
	Endpoint  NotificationEndpoint `json:"endpoint"`
	Delivered bool                 `json:"delivered"`
	Attempts  int                  `json:"attempts"`
	Error     string               `json:"error,omitempty"`
	SentAt    time.Time            `json:"sentAt"`
}

// SubmissionEmail is a composed lender email ready for an external mailer.
type SubmissionEmail struct {
	LenderID   string `json:"lenderId"`
	LenderName string `json:"lenderName"`
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}
