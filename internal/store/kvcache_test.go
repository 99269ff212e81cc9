package store

import (
	"context"
	"testing"

	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCacheRoundTrip(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	require.NoError(t, cache.Set("favorites_anonymous_workout", `["a","b"]`))
	got, ok := cache.Get("favorites_anonymous_workout")
	require.True(t, ok)
	assert.Equal(t, `["a","b"]`, got)

	// Overwrite replaces the previous value.
	require.NoError(t, cache.Set("favorites_anonymous_workout", `[]`))
	got, _ = cache.Get("favorites_anonymous_workout")
	assert.Equal(t, `[]`, got)
}

func TestFileCacheSanitizesKeys(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cache.Set("plans/anon token:1", "x"))
	got, ok := cache.Get("plans/anon token:1")
	require.True(t, ok)
	assert.Equal(t, "x", got)
}

func TestFileCacheKeysDoNotCollide(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	// Keys that differ only in sanitized characters stay distinct entries.
	require.NoError(t, cache.Set("plans_a/b_workout", "slash"))
	require.NoError(t, cache.Set("plans_a_b_workout", "underscore"))

	got, ok := cache.Get("plans_a/b_workout")
	require.True(t, ok)
	assert.Equal(t, "slash", got)

	got, ok = cache.Get("plans_a_b_workout")
	require.True(t, ok)
	assert.Equal(t, "underscore", got)
}

func TestLocalFavoritePersister(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	p := NewLocalFavoritePersister(cache)
	ctx := context.Background()

	ids, err := p.Fetch(ctx, "anon-1", models.KindWorkout)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, p.Save(ctx, "anon-1", models.KindWorkout, []string{"p1", "p2"}))
	ids, err = p.Fetch(ctx, "anon-1", models.KindWorkout)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	// Kinds are stored under separate keys.
	ids, err = p.Fetch(ctx, "anon-1", models.KindDiet)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLocalPlanPersister(t *testing.T) {
	cache, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	p := NewLocalPlanPersister(cache, "anon-1", models.KindDiet)
	ctx := context.Background()

	plans, err := p.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)

	require.NoError(t, p.Insert(ctx, &models.Plan{ID: "d1", Name: "Cut"}))
	require.NoError(t, p.Insert(ctx, &models.Plan{ID: "d2", Name: "Bulk"}))

	plans, err = p.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "d2", plans[0].ID)

	require.NoError(t, p.Merge(ctx, "d1", map[string]interface{}{"name": "Lean Cut"}))
	plans, _ = p.FetchAll(ctx)
	assert.Equal(t, "Lean Cut", plans[1].Name)

	require.NoError(t, p.Remove(ctx, "d2"))
	plans, _ = p.FetchAll(ctx)
	require.Len(t, plans, 1)
	assert.Equal(t, "d1", plans[0].ID)
}
