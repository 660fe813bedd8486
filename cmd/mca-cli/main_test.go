package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/extraction"
	"mca-workers/internal/models"
	"mca-workers/pkg/registry"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name string, v interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var data []byte
	switch x := v.(type) {
	case string:
		data = []byte(x)
	case []byte:
		data = x
	default:
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ==========================
// extract
// ==========================

func TestExtract_TextFile(t *testing.T) {
	path := writeFile(t, "application.txt", "Business Name: Acme Widgets LLC\nCredit Score: 720\n")

	stdout, _, err := run(t, "extract", "--file", path)
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &fields))
	assert.Equal(t, "Acme Widgets LLC", fields[extraction.FieldBusinessName])
	assert.Equal(t, "720", fields[extraction.FieldCreditScore])
}

func TestExtract_UnreadablePDFStillSucceeds(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("not a pdf at all"))

	stdout, stderr, err := run(t, "extract", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "manual entry")
	assert.NotEmpty(t, stdout)
}

func TestExtract_RequiresFile(t *testing.T) {
	_, _, err := run(t, "extract")
	assert.Error(t, err)
}

// ==========================
// qualify
// ==========================

func qualifyFixtures(t *testing.T) (string, string) {
	applicant := models.ApplicantProfile{
		BusinessName:    "Acme Widgets",
		Industry:        "Retail",
		RequestedAmount: 50000,
		CreditScore:     700,
		YearsInBusiness: 3,
		MonthlyRevenue:  20000,
	}
	lenders := []models.Lender{
		{ID: "l-strict", Name: "Strict", Status: models.LenderStatusActive, MinAmount: 10000, MaxAmount: 500000,
			MinCreditScore: 750, MaxCreditScore: 850, Industries: []string{"Retail"}},
		{ID: "l-fit", Name: "Fit", Status: models.LenderStatusActive, MinAmount: 10000, MaxAmount: 500000,
			MinCreditScore: 550, MaxCreditScore: 850, MinMonthlyRevenue: 15000, Industries: []string{"Retail"},
			Features: []string{"No collateral", "Same-day funding"}},
	}
	return writeFile(t, "app.json", applicant), writeFile(t, "lenders.json", lenders)
}

func TestQualify(t *testing.T) {
	app, lenders := qualifyFixtures(t)

	stdout, _, err := run(t, "qualify", "--application", app, "--lenders", lenders)
	require.NoError(t, err)

	var results []models.MatchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	byID := map[string]models.MatchResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	assert.False(t, byID["l-strict"].Qualified)
	assert.True(t, byID["l-fit"].Qualified)
}

func TestQualify_Ranked(t *testing.T) {
	app, lenders := qualifyFixtures(t)

	stdout, _, err := run(t, "qualify", "-a", app, "-l", lenders, "--ranked")
	require.NoError(t, err)

	var out struct {
		RankedMatches []struct {
			ID        string `json:"id"`
			Rank      int    `json:"rank"`
			Qualified bool   `json:"qualified"`
		} `json:"rankedMatches"`
		FeatureSummary map[string]string `json:"featureSummary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.RankedMatches, 2)
	assert.Equal(t, "l-fit", out.RankedMatches[0].ID)
	assert.Equal(t, 1, out.RankedMatches[0].Rank)
	assert.Equal(t, "No collateral, Same-day funding", out.FeatureSummary["l-fit"])
}

func TestQualify_BadJSON(t *testing.T) {
	app := writeFile(t, "app.json", "{")
	_, lenders := qualifyFixtures(t)
	_, _, err := run(t, "qualify", "-a", app, "-l", lenders)
	assert.ErrorContains(t, err, "failed to parse")
}

// ==========================
// registry
// ==========================

func TestRegistryValidate_ShippedRegistry(t *testing.T) {
	stdout, _, err := run(t, "registry", "validate", "--path", filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Found 17 activities")
}

func TestRegistryValidate_UnknownTaskType(t *testing.T) {
	reg := registry.ActivityRegistry{Activities: []registry.Activity{
		{ID: "credit-pull", DisplayName: "Credit Pull", Category: "underwriting", TaskType: "credit-pull"},
	}}
	path := writeFile(t, "registry.json", reg)

	_, _, err := run(t, "registry", "validate", "-p", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task type credit-pull")
	assert.Contains(t, err.Error(), "task type qualify-lenders has no activity")
}

func TestRegistrySyncThenSet(t *testing.T) {
	path := writeFile(t, "registry.json", registry.ActivityRegistry{Version: "1.0.0", Activities: []registry.Activity{}})

	stdout, _, err := run(t, "registry", "sync", "-p", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "17 added")

	_, _, err = run(t, "registry", "validate", "-p", path)
	require.NoError(t, err)

	_, _, err = run(t, "registry", "set", "-p", path, "--id", "qualify-lenders", "--field", "status", "--value", "verified")
	require.NoError(t, err)

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Find("qualify-lenders")
	require.True(t, ok)
	assert.Equal(t, "verified", a.ImplementationStatus)
	assert.Contains(t, a.InputSchema, "anyOf")
}
