// internal/workers/lender/rank-lender-matches/models.go
package ranklendermatches

import (
	"mca-workers/internal/common/validation"
	"mca-workers/internal/models"
)

type Input struct {
	Matches       []models.MatchResult `json:"matches"`
	OnlyQualified bool                 `json:"onlyQualified"`
	Limit         int                  `json:"limit"`
}

type RankedMatch struct {
	models.MatchResult
	Rank         int      `json:"rank"`
	KeyFeatures  []string `json:"keyFeatures"`
	MoreFeatures int      `json:"moreFeatures"`
}

type Output struct {
	RankedMatches []RankedMatch `json:"rankedMatches"`
	// FeatureSummary maps lender id to a one-line feature list.
	FeatureSummary map[string]string `json:"featureSummary"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"matches"},
		Properties: map[string]validation.Property{
			"matches":       {Type: "array", Items: &validation.Property{Type: "object"}},
			"onlyQualified": {Type: "boolean"},
			"limit":         {Type: "integer", Minimum: validation.Float(0)},
		},
	}
}
