// internal/models/application.go
package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "draft"
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under-review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusFunded      ApplicationStatus = "funded"
	ApplicationStatusDeclined    ApplicationStatus = "declined"
)

var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusDraft,
	ApplicationStatusSubmitted,
	ApplicationStatusUnderReview,
	ApplicationStatusApproved,
	ApplicationStatusFunded,
	ApplicationStatusDeclined,
}

func (s ApplicationStatus) Valid() bool {
	for _, status := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ApplicantProfile is the business being scored against lender rules.
// Numeric fields left at zero fail the corresponding lender constraint.
type ApplicantProfile struct {
	BusinessName      string   `json:"businessName" validate:"required"`
	OwnerName         string   `json:"ownerName" validate:"required"`
	Email             string   `json:"email" validate:"required,loose_email"`
	Phone             string   `json:"phone" validate:"required,phone_chars"`
	Address           string   `json:"address"`
	EIN               string   `json:"ein"`
	BusinessType      string   `json:"businessType" validate:"required,business_type"`
	Industry          string   `json:"industry" validate:"required,industry"`
	YearsInBusiness   float64  `json:"yearsInBusiness" validate:"gte=0"`
	NumberOfEmployees int      `json:"numberOfEmployees" validate:"gte=0"`
	AnnualRevenue     float64  `json:"annualRevenue" validate:"gte=0"`
	MonthlyRevenue    float64  `json:"monthlyRevenue" validate:"gte=10000"`
	MonthlyDeposits   float64  `json:"monthlyDeposits" validate:"gte=0"`
	ExistingDebt      float64  `json:"existingDebt" validate:"gte=0"`
	CreditScore       int      `json:"creditScore" validate:"gte=300,lte=850"`
	RequestedAmount   float64  `json:"requestedAmount" validate:"gte=10000"`
	Documents         []string `json:"documents"`
}

type Application struct {
	ID string `json:"id"`
	ApplicantProfile
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ApplicationPatch carries a partial update; nil fields are left unchanged.
type ApplicationPatch struct {
	BusinessName      *string            `json:"businessName,omitempty"`
	OwnerName         *string            `json:"ownerName,omitempty"`
	Email             *string            `json:"email,omitempty"`
	Phone             *string            `json:"phone,omitempty"`
	Address           *string            `json:"address,omitempty"`
	EIN               *string            `json:"ein,omitempty"`
	BusinessType      *string            `json:"businessType,omitempty"`
	Industry          *string            `json:"industry,omitempty"`
	YearsInBusiness   *float64           `json:"yearsInBusiness,omitempty"`
	NumberOfEmployees *int               `json:"numberOfEmployees,omitempty"`
	AnnualRevenue     *float64           `json:"annualRevenue,omitempty"`
	MonthlyRevenue    *float64           `json:"monthlyRevenue,omitempty"`
	MonthlyDeposits   *float64           `json:"monthlyDeposits,omitempty"`
	ExistingDebt      *float64           `json:"existingDebt,omitempty"`
	CreditScore       *int               `json:"creditScore,omitempty"`
	RequestedAmount   *float64           `json:"requestedAmount,omitempty"`
	Documents         []string           `json:"documents,omitempty"`
	Status            *ApplicationStatus `json:"status,omitempty"`
}
