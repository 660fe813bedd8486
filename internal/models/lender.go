// internal/models/lender.go
package models

import "time"

type LenderStatus string

const (
	LenderStatusActive   LenderStatus = "active"
	LenderStatusInactive LenderStatus = "inactive"
	LenderStatusPending  LenderStatus = "pending"
)

// Lender holds a lender's underwriting rules. FactorRate, PaybackTerm and
// ApprovalTime are free text as entered by an administrator, e.g. "1.1 - 1.4".
type Lender struct {
	ID                string       `json:"id"`
	Name              string       `json:"name" validate:"required"`
	ContactEmail      string       `json:"contactEmail" validate:"omitempty,email"`
	Phone             string       `json:"phone"`
	Status            LenderStatus `json:"status" validate:"oneof=active inactive pending"`
	Rating            float64      `json:"rating" validate:"gte=1,lte=5"`
	TotalApplications int          `json:"totalApplications" validate:"gte=0"`
	ApprovalRate      float64      `json:"approvalRate" validate:"gte=0,lte=100"`
	MinAmount         float64      `json:"minAmount" validate:"gte=0"`
	MaxAmount         float64      `json:"maxAmount" validate:"gtefield=MinAmount"`
	MinCreditScore    int          `json:"minCreditScore" validate:"gte=300,lte=850"`
	MaxCreditScore    int          `json:"maxCreditScore" validate:"gtefield=MinCreditScore,lte=850"`
	MinTimeInBusiness float64      `json:"minTimeInBusiness" validate:"gte=0"`
	MinMonthlyRevenue float64      `json:"minMonthlyRevenue" validate:"gte=0"`
	Industries        []string     `json:"industries"`
	FactorRate        string       `json:"factorRate"`
	PaybackTerm       string       `json:"paybackTerm"`
	ApprovalTime      string       `json:"approvalTime"`
	Features          []string     `json:"features"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// MatchResult pairs a lender with the outcome of scoring one applicant
// against it. It is derived on every request and never stored.
type MatchResult struct {
	Lender
	Qualified  bool `json:"qualified"`
	MatchScore int  `json:"matchScore"`
}
