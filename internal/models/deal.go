// internal/models/deal.go
package models

// DealDetails is the post-submission deal snapshot pushed to the
// updating-applications endpoint. Values are kept as entered.
type DealDetails struct {
	ID                     string `json:"id"`
	ApplicationID          string `json:"applicationId" validate:"required"`
	DealName               string `json:"dealName"`
	EntityType             string `json:"entityType"`
	Industry               string `json:"industry"`
	State                  string `json:"state"`
	CreditScore            string `json:"creditScore"`
	TimeInBiz              string `json:"timeInBiz"`
	GrossAnnualRevenue     string `json:"grossAnnualRevenue"`
	AvgMonthlyRevenue      string `json:"avgMonthlyRevenue"`
	AvgDailyBalance        string `json:"avgDailyBalance"`
	AvgMonthlyDepositCount string `json:"avgMonthlyDepositCount"`
	NSFCount               string `json:"nsfCount"`
	NegativeDays           string `json:"negativeDays"`
	CurrentPositionCount   string `json:"currentPositionCount"`
	Holdback               string `json:"holdback"`
	HasBankruptcies        bool   `json:"hasBankruptcies"`
	HasOpenJudgments       bool   `json:"hasOpenJudgments"`
}
