// internal/models/submission.go
package models

import "time"

type SubmissionStatus string

const (
	SubmissionStatusPending      SubmissionStatus = "pending"
	SubmissionStatusApproved     SubmissionStatus = "approved"
	SubmissionStatusDeclined     SubmissionStatus = "declined"
	SubmissionStatusCounterOffer SubmissionStatus = "counter-offer"
	SubmissionStatusFunded       SubmissionStatus = "funded"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusDeclined,
		SubmissionStatusCounterOffer, SubmissionStatusFunded:
		return true
	}
	return false
}

type LenderSubmission struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"applicationId"`
	LenderID      string           `json:"lenderId"`
	Status        SubmissionStatus `json:"status"`
	Response      *string          `json:"response,omitempty"`
	OfferedAmount *float64         `json:"offeredAmount,omitempty"`
	FactorRate    *float64         `json:"factorRate,omitempty"`
	Terms         *string          `json:"terms,omitempty"`
	ResponseDate  *time.Time       `json:"responseDate,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type SubmissionWithLender struct {
	LenderSubmission
	Lender Lender `json:"lender"`
}

// SubmissionPatch carries an admin review update; nil fields are left unchanged.
type SubmissionPatch struct {
	Status        *SubmissionStatus `json:"status,omitempty"`
	Response      *string           `json:"response,omitempty"`
	OfferedAmount *float64          `json:"offeredAmount,omitempty"`
	FactorRate    *float64          `json:"factorRate,omitempty"`
	Terms         *string           `json:"terms,omitempty"`
	ResponseDate  *time.Time        `json:"responseDate,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
}
