package store

import (
	"context"
	"testing"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFavoritePersister struct {
	saved    map[string][]string
	failSave bool
}

func favKey(owner string, kind models.PlanKind) string {
	return owner + "/" + string(kind)
}

func (f *fakeFavoritePersister) Fetch(_ context.Context, owner string, kind models.PlanKind) ([]string, error) {
	return f.saved[favKey(owner, kind)], nil
}

func (f *fakeFavoritePersister) Save(_ context.Context, owner string, kind models.PlanKind, ids []string) error {
	if f.failSave {
		return errRemoteDown
	}
	if f.saved == nil {
		f.saved = map[string][]string{}
	}
	f.saved[favKey(owner, kind)] = ids
	return nil
}

func TestToggleSymmetry(t *testing.T) {
	ledger := NewFavoritesLedger(models.KindWorkout, "user1", &fakeFavoritePersister{})

	require.False(t, ledger.IsFavorite("plan1"))
	require.NoError(t, ledger.Toggle(context.Background(), "plan1"))
	assert.True(t, ledger.IsFavorite("plan1"))

	require.NoError(t, ledger.Toggle(context.Background(), "plan1"))
	assert.False(t, ledger.IsFavorite("plan1"))
}

func TestToggleRevertsOnPersistenceFailure(t *testing.T) {
	persister := &fakeFavoritePersister{failSave: true}
	ledger := NewFavoritesLedger(models.KindWorkout, "user1", persister)

	// Toggling on fails: state reverts to off.
	err := ledger.Toggle(context.Background(), "plan1")
	require.Error(t, err)
	assert.True(t, apperr.IsTransport(err))
	assert.False(t, ledger.IsFavorite("plan1"))
}

func TestToggleRevertIsSymmetric(t *testing.T) {
	persister := &fakeFavoritePersister{}
	ledger := NewFavoritesLedger(models.KindWorkout, "user1", persister)
	require.NoError(t, ledger.Toggle(context.Background(), "plan1"))

	// Toggling off fails: state reverts to on.
	persister.failSave = true
	err := ledger.Toggle(context.Background(), "plan1")
	require.Error(t, err)
	assert.True(t, ledger.IsFavorite("plan1"))
}

func TestLoadReplacesState(t *testing.T) {
	persister := &fakeFavoritePersister{saved: map[string][]string{
		"user1/workout": {"a", "b"},
	}}
	ledger := NewFavoritesLedger(models.KindWorkout, "user1", persister)

	require.NoError(t, ledger.Load(context.Background()))
	assert.Equal(t, []string{"a", "b"}, ledger.Favorites())
	assert.True(t, ledger.IsFavorite("a"))
	assert.False(t, ledger.IsFavorite("c"))
}

func TestLedgersAreScopedByOwner(t *testing.T) {
	persister := &fakeFavoritePersister{}

	alice := NewFavoritesLedger(models.KindWorkout, "alice", persister)
	require.NoError(t, alice.Toggle(context.Background(), "plan1"))

	bob := NewFavoritesLedger(models.KindWorkout, "bob", persister)
	require.NoError(t, bob.Load(context.Background()))
	assert.False(t, bob.IsFavorite("plan1"))
}

func TestAnonymousOwnerFallback(t *testing.T) {
	ledger := NewFavoritesLedger(models.KindDiet, "", &fakeFavoritePersister{})
	assert.Equal(t, AnonymousOwner, ledger.Owner())
}

func TestPurgeRemovesWithoutRevert(t *testing.T) {
	persister := &fakeFavoritePersister{}
	ledger := NewFavoritesLedger(models.KindWorkout, "user1", persister)
	require.NoError(t, ledger.Toggle(context.Background(), "plan1"))

	// Purge on a failed save keeps the local removal: the plan is gone and
	// a stale persisted id is tolerated at read time.
	persister.failSave = true
	err := ledger.Purge(context.Background(), "plan1")
	require.Error(t, err)
	assert.False(t, ledger.IsFavorite("plan1"))

	// Purging an id that is not favorited is a no-op, not an error.
	require.NoError(t, ledger.Purge(context.Background(), "missing"))
}
