// Package qualification scores an applicant against lender underwriting rules.
package qualification

import (
	"regexp"
	"strconv"
	"strings"

	"mca-workers/internal/models"
)

const (
	BaseScore = 100

	PenaltyAmount       = 30
	PenaltyCreditScore  = 25
	PenaltyTimeInBiz    = 20
	PenaltyRevenue      = 15
	PenaltyIndustry     = 10
	BonusLowFactorRate  = 5
	BonusFastApproval   = 3
	LowFactorRateCutoff = 1.15

	// MaxScore is the best reachable score: base plus both bonuses.
	MaxScore = BaseScore + BonusLowFactorRate + BonusFastApproval
)

var fastApprovalMarkers = []string{"24 hours", "2 hours"}

// hyphen, en dash, em dash
var rangeSeparator = regexp.MustCompile(`[-\x{2013}\x{2014}]`)

// leading decimal of a token; trailing text such as "x" or "to 1.4" is ignored
var leadingDecimal = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?|\.\d+)`)

// Qualify scores every lender against the applicant. The result keeps the
// order of lenders and is never sorted here.
func Qualify(lenders []models.Lender, applicant models.ApplicantProfile) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(lenders))
	for _, lender := range lenders {
		results = append(results, Evaluate(lender, applicant))
	}
	return results
}

// Evaluate applies the rule set to a single lender. Only the four hard
// constraints affect Qualified; industry and the bonuses move the score.
func Evaluate(lender models.Lender, applicant models.ApplicantProfile) models.MatchResult {
	score := BaseScore
	qualified := true

	if applicant.RequestedAmount < lender.MinAmount || applicant.RequestedAmount > lender.MaxAmount {
		qualified = false
		score -= PenaltyAmount
	}

	if applicant.CreditScore < lender.MinCreditScore || applicant.CreditScore > lender.MaxCreditScore {
		qualified = false
		score -= PenaltyCreditScore
	}

	if applicant.YearsInBusiness < lender.MinTimeInBusiness {
		qualified = false
		score -= PenaltyTimeInBiz
	}

	if applicant.MonthlyRevenue < lender.MinMonthlyRevenue {
		qualified = false
		score -= PenaltyRevenue
	}

	if !AcceptsIndustry(lender.Industries, applicant.Industry) {
		score -= PenaltyIndustry
	}

	if rate, ok := FactorRateLowerBound(lender.FactorRate); ok && rate < LowFactorRateCutoff {
		score += BonusLowFactorRate
	}

	if IsFastApproval(lender.ApprovalTime) {
		score += BonusFastApproval
	}

	if score < 0 {
		score = 0
	}

	return models.MatchResult{
		Lender:     lender,
		Qualified:  qualified,
		MatchScore: score,
	}
}

// AcceptsIndustry reports whether the lender's industry list contains the
// wildcard or the applicant's industry.
func AcceptsIndustry(industries []string, industry string) bool {
	for _, accepted := range industries {
		if accepted == models.AllIndustries || accepted == industry {
			return true
		}
	}
	return false
}

// FactorRateLowerBound reads the leading number of the first part of a range
// like "1.1 - 1.4" or "1.10x - 1.40x". Text without a leading number has no
// lower bound.
func FactorRateLowerBound(text string) (float64, bool) {
	m := leadingDecimal.FindStringSubmatch(rangeSeparator.Split(text, 2)[0])
	if m == nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return rate, true
}

func IsFastApproval(approvalTime string) bool {
	for _, marker := range fastApprovalMarkers {
		if strings.Contains(approvalTime, marker) {
			return true
		}
	}
	return false
}

// QualifiedCount returns how many results passed every hard constraint.
func QualifiedCount(results []models.MatchResult) int {
	n := 0
	for _, r := range results {
		if r.Qualified {
			n++
		}
	}
	return n
}
