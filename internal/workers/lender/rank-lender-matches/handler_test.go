package ranklendermatches

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/common/camunda/camundatest"
	"mca-workers/internal/common/logger"
	"mca-workers/internal/models"
)

func testConfig() *Config {
	return &Config{Timeout: 3 * time.Second, MaxItems: 100, KeyFeatures: 4}
}

func match(id string, qualified bool, score int, features ...string) models.MatchResult {
	return models.MatchResult{
		Lender:     models.Lender{ID: id, Name: id, Features: features},
		Qualified:  qualified,
		MatchScore: score,
	}
}

func ids(ranked []RankedMatch) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.ID)
	}
	return out
}

func TestExecute_QualifiedFirstThenScore(t *testing.T) {
	h := NewHandler(testConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Matches: []models.MatchResult{
		match("a", false, 100),
		match("b", true, 80),
		match("c", true, 105),
		match("d", false, 60),
		match("e", true, 80),
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "b", "e", "a", "d"}, ids(out.RankedMatches))
	assert.Equal(t, 1, out.RankedMatches[0].Rank)
	assert.Equal(t, 5, out.RankedMatches[4].Rank)
}

func TestExecute_OnlyQualifiedAndLimit(t *testing.T) {
	h := NewHandler(testConfig(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{
		OnlyQualified: true,
		Limit:         2,
		Matches: []models.MatchResult{
			match("a", true, 70), match("b", false, 100), match("c", true, 90), match("d", true, 80),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, ids(out.RankedMatches))
}

func TestExecute_FeatureSummary(t *testing.T) {
	h := NewHandler(testConfig(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{Matches: []models.MatchResult{
		match("many", true, 100, "Same day funding", "No collateral", "Bad credit OK", "Early payoff discount", "Dedicated rep", "Renewals"),
		match("few", true, 90, "Same day funding"),
		match("none", true, 80),
	}})
	require.NoError(t, err)

	assert.Equal(t, "Same day funding, No collateral, Bad credit OK, Early payoff discount +2 more", out.FeatureSummary["many"])
	assert.Equal(t, 2, out.RankedMatches[0].MoreFeatures)
	assert.Len(t, out.RankedMatches[0].KeyFeatures, 4)
	assert.Equal(t, "Same day funding", out.FeatureSummary["few"])
	assert.Equal(t, "", out.FeatureSummary["none"])
	assert.Empty(t, out.RankedMatches[2].KeyFeatures)
}

func TestHandle(t *testing.T) {
	h := NewHandler(testConfig(), logger.NewNoOpLogger())
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 1, TaskType, map[string]interface{}{
		"matches": []interface{}{
			map[string]interface{}{"id": "x", "qualified": false, "matchScore": 90},
			map[string]interface{}{"id": "y", "qualified": true, "matchScore": 70},
		},
	}))

	completed := client.Completed(t)
	require.Len(t, completed, 1)
	ranked := completed[0]["rankedMatches"].([]interface{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "y", ranked[0].(map[string]interface{})["id"])
}

func TestHandle_MissingMatchesThrows(t *testing.T) {
	h := NewHandler(testConfig(), logger.NewNoOpLogger())
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(t, 2, TaskType, map[string]interface{}{"limit": 3}))

	assert.Len(t, client.Thrown(), 1)
}
