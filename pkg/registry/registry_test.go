package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var known = Known{
	TaskTypes:  []string{"qualify-lenders", "rank-lender-matches"},
	ErrorCodes: []string{"INPUT_VALIDATION_FAILED", "QUERY_TIMEOUT"},
}

func activity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: id,
		Category:    "lender",
		TaskType:    id,
		Timeout:     "30s",
		ErrorCodes:  []string{"INPUT_VALIDATION_FAILED"},
		InputSchema: map[string]interface{}{"type": "object"},
	}
}

func TestValidate_OK(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{activity("qualify-lenders"), activity("rank-lender-matches")}}
	assert.NoError(t, reg.Validate(known))
}

func TestValidate_Problems(t *testing.T) {
	bad := activity("rank-lender-matches")
	bad.Timeout = "soon"
	bad.ErrorCodes = []string{"TEAPOT"}
	bad.InputSchema = map[string]interface{}{"type": 7}

	reg := &ActivityRegistry{Activities: []Activity{
		activity("credit-pull"),
		bad,
		activity("rank-lender-matches"),
	}}

	err := reg.Validate(known)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "unknown task type credit-pull")
	assert.Contains(t, msg, `invalid timeout "soon"`)
	assert.Contains(t, msg, "unknown error code TEAPOT")
	assert.Contains(t, msg, "input schema")
	assert.Contains(t, msg, "duplicate activity ID: rank-lender-matches")
	assert.Contains(t, msg, "task type qualify-lenders has no activity")
}

func TestValidate_Empty(t *testing.T) {
	assert.EqualError(t, (&ActivityRegistry{}).Validate(known), "registry contains no activities")
}

func TestAddSetSaveLoad(t *testing.T) {
	reg := &ActivityRegistry{Version: "1.0.0"}
	require.NoError(t, reg.Add(activity("qualify-lenders")))
	assert.Error(t, reg.Add(activity("qualify-lenders")))

	require.NoError(t, reg.Set("qualify-lenders", "status", "verified"))
	require.NoError(t, reg.Set("qualify-lenders", "retries", "2"))
	assert.Error(t, reg.Set("qualify-lenders", "status", "shipped"))
	assert.Error(t, reg.Set("qualify-lenders", "timeout", "later"))
	assert.Error(t, reg.Set("qualify-lenders", "colour", "blue"))
	assert.ErrorIs(t, reg.Set("missing", "status", "planned"), ErrActivityNotFound)

	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, reg.Save(path, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T12:00:00Z", loaded.LastUpdated)
	a, ok := loaded.Find("qualify-lenders")
	require.True(t, ok)
	assert.Equal(t, "verified", a.ImplementationStatus)
	assert.Equal(t, 2, a.Retries)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
