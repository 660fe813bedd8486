package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Merge rules
// ==========================

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		seed        func(d *Draft)
		source      Source
		fields      map[string]string
		wantValues  map[string]string
		wantProv    map[string]Provenance
		wantChanged []string
	}{
		{
			name:        "auto fills unset fields",
			source:      SourceWebhook,
			fields:      map[string]string{"ownerName": "Jordan Smith", "creditScore": "680"},
			wantValues:  map[string]string{"ownerName": "Jordan Smith", "creditScore": "680"},
			wantProv:    map[string]Provenance{"ownerName": ProvenanceAuto, "creditScore": ProvenanceAuto},
			wantChanged: []string{"creditScore", "ownerName"},
		},
		{
			name: "auto overwrites auto",
			seed: func(d *Draft) {
				Apply(d, SourceWebhook, map[string]string{"creditScore": "640"})
			},
			source:      SourceWebhook,
			fields:      map[string]string{"creditScore": "700"},
			wantValues:  map[string]string{"creditScore": "700"},
			wantProv:    map[string]Provenance{"creditScore": ProvenanceAuto},
			wantChanged: []string{"creditScore"},
		},
		{
			name: "auto never touches user edits",
			seed: func(d *Draft) {
				Apply(d, SourceUser, map[string]string{"creditScore": "720"})
			},
			source:      SourceWebhook,
			fields:      map[string]string{"creditScore": "700"},
			wantValues:  map[string]string{"creditScore": "720"},
			wantProv:    map[string]Provenance{"creditScore": ProvenanceUser},
			wantChanged: nil,
		},
		{
			name: "empty auto value ignored",
			seed: func(d *Draft) {
				Apply(d, SourceWebhook, map[string]string{"phone": "(555) 123-4567"})
			},
			source:      SourceWebhook,
			fields:      map[string]string{"phone": ""},
			wantValues:  map[string]string{"phone": "(555) 123-4567"},
			wantProv:    map[string]Provenance{"phone": ProvenanceAuto},
			wantChanged: nil,
		},
		{
			name:        "document skips business name and address",
			source:      SourceDocument,
			fields:      map[string]string{"businessName": "Acme", "address": "1 Main St", "ein": "12-3456789"},
			wantValues:  map[string]string{"ein": "12-3456789"},
			wantProv:    map[string]Provenance{"ein": ProvenanceAuto},
			wantChanged: []string{"ein"},
		},
		{
			name: "user value pins even when equal to auto value",
			seed: func(d *Draft) {
				Apply(d, SourceWebhook, map[string]string{"industry": "Retail"})
			},
			source:      SourceUser,
			fields:      map[string]string{"industry": "Retail"},
			wantValues:  map[string]string{"industry": "Retail"},
			wantProv:    map[string]Provenance{"industry": ProvenanceUser},
			wantChanged: []string{"industry"},
		},
		{
			name:        "user may clear a field",
			source:      SourceUser,
			fields:      map[string]string{"email": ""},
			wantValues:  map[string]string{"email": ""},
			wantProv:    map[string]Provenance{"email": ProvenanceUser},
			wantChanged: []string{"email"},
		},
		{
			name: "same auto value is not a change",
			seed: func(d *Draft) {
				Apply(d, SourceDocument, map[string]string{"ein": "12-3456789"})
			},
			source:      SourceWebhook,
			fields:      map[string]string{"ein": "12-3456789"},
			wantValues:  map[string]string{"ein": "12-3456789"},
			wantProv:    map[string]Provenance{"ein": ProvenanceAuto},
			wantChanged: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New("d-1")
			if tt.seed != nil {
				tt.seed(d)
			}

			changed := Apply(d, tt.source, tt.fields)

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantValues, d.Values)
			assert.Equal(t, tt.wantProv, d.Provenance)
		})
	}
}

func TestProvenanceOf_DefaultsToUnset(t *testing.T) {
	assert.Equal(t, ProvenanceUnset, New("x").ProvenanceOf("email"))
}

// ==========================
// Redis store
// ==========================

func newStore(t *testing.T) (*miniredis.Miniredis, *redis.Client, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, time.Hour)
	store.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return mr, rdb, store
}

func TestRedisStore_LoadMissingReturnsEmptyDraft(t *testing.T) {
	_, _, store := newStore(t)

	d, err := store.Load(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, "new", d.ID)
	assert.Empty(t, d.Values)
	assert.NotNil(t, d.Provenance)
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	mr, _, store := newStore(t)
	ctx := context.Background()

	d := New("d-1")
	Apply(d, SourceUser, map[string]string{"ownerName": "Jordan"})
	require.NoError(t, store.Save(ctx, d))

	assert.Equal(t, time.Hour, mr.TTL(key("d-1")))

	loaded, err := store.Load(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "Jordan", loaded.Values["ownerName"])
	assert.Equal(t, ProvenanceUser, loaded.ProvenanceOf("ownerName"))
	assert.Equal(t, 2024, loaded.UpdatedAt.Year())
}

func TestRedisStore_LoadCorrupt(t *testing.T) {
	mr, _, store := newStore(t)
	require.NoError(t, mr.Set(key("bad"), "{not json"))

	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStore_Update(t *testing.T) {
	_, _, store := newStore(t)
	ctx := context.Background()

	var changed []string
	d, err := store.Update(ctx, "d-1", func(d *Draft) error {
		changed = Apply(d, SourceWebhook, map[string]string{"industry": "Retail"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"industry"}, changed)
	assert.Equal(t, "Retail", d.Values["industry"])

	loaded, err := store.Load(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, d.Values, loaded.Values)
}

func TestRedisStore_UpdateCallbackErrorSavesNothing(t *testing.T) {
	mr, _, store := newStore(t)
	boom := errors.New("boom")

	_, err := store.Update(context.Background(), "d-1", func(d *Draft) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(key("d-1")))
}

func TestRedisStore_UpdateRetriesOnConcurrentWrite(t *testing.T) {
	_, rdb, store := newStore(t)
	ctx := context.Background()

	calls := 0
	d, err := store.Update(ctx, "d-1", func(d *Draft) error {
		calls++
		if calls == 1 {
			// a concurrent writer lands between WATCH and EXEC
			require.NoError(t, rdb.Set(ctx, key("d-1"), `{"id":"d-1","values":{"email":"a@b.co"},"provenance":{"email":"user-edited"}}`, 0).Err())
		}
		Apply(d, SourceWebhook, map[string]string{"email": "x@y.co", "phone": "555"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "a@b.co", d.Values["email"])
	assert.Equal(t, "555", d.Values["phone"])
}

func TestRedisStore_UpdateGivesUpWithConflict(t *testing.T) {
	_, rdb, store := newStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, "d-1", func(d *Draft) error {
		return rdb.Set(ctx, key("d-1"), `{"id":"d-1"}`, 0).Err()
	})
	assert.ErrorIs(t, err, ErrDraftConflict)
}
