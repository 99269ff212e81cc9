package store

import (
	"context"
	"sync"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/models"
)

// FavoritePersister stores one user's favorite plan ids for one kind.
type FavoritePersister interface {
	Fetch(ctx context.Context, owner string, kind models.PlanKind) ([]string, error)
	Save(ctx context.Context, owner string, kind models.PlanKind, ids []string) error
}

// AnonymousOwner keys the local-only ledger used when no authenticated
// identity exists.
const AnonymousOwner = "anonymous"

// FavoritesLedger is a session-scoped set of favorite plan ids for a single
// identity. Toggles are optimistic: the flip applies locally, then persists;
// a failed persistence write reverts the flip exactly and surfaces the error.
//
// A ledger is bound to one identity for its whole lifetime. On login/logout
// the session layer discards it and builds a fresh one, so favorites can
// never leak between identities.
type FavoritesLedger struct {
	mu     sync.Mutex
	kind   models.PlanKind
	owner  string
	remote FavoritePersister
	ids    []string
}

// NewFavoritesLedger creates an empty ledger for one identity and kind.
// Call Load to populate it.
func NewFavoritesLedger(kind models.PlanKind, owner string, remote FavoritePersister) *FavoritesLedger {
	if owner == "" {
		owner = AnonymousOwner
	}
	return &FavoritesLedger{
		kind:   kind,
		owner:  owner,
		remote: remote,
	}
}

// Owner returns the identity this ledger is scoped to.
func (l *FavoritesLedger) Owner() string {
	return l.owner
}

// Load replaces the in-memory set with the persisted one.
func (l *FavoritesLedger) Load(ctx context.Context) error {
	ids, err := l.remote.Fetch(ctx, l.owner, l.kind)
	if err != nil {
		return &apperr.TransportFailure{Err: err}
	}

	l.mu.Lock()
	l.ids = ids
	l.mu.Unlock()
	return nil
}

// IsFavorite reports whether the id is currently marked favorite.
func (l *FavoritesLedger) IsFavorite(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOf(id) >= 0
}

// Favorites returns a snapshot of the favorite ids in insertion order. Ids
// need not correspond to existing plans; callers filter against the plan
// store at read time.
func (l *FavoritesLedger) Favorites() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Toggle flips the favorite state of id. The flip is applied locally first;
// if persisting fails, the flip is reverted (toggle is its own inverse) and
// a TransportFailure returned.
func (l *FavoritesLedger) Toggle(ctx context.Context, id string) error {
	l.mu.Lock()
	l.flip(id)
	snapshot := make([]string, len(l.ids))
	copy(snapshot, l.ids)
	l.mu.Unlock()

	if err := l.remote.Save(ctx, l.owner, l.kind, snapshot); err != nil {
		l.mu.Lock()
		l.flip(id)
		l.mu.Unlock()
		return &apperr.TransportFailure{Err: err}
	}
	return nil
}

// Purge removes id from the set after its plan was deleted. Unlike Toggle it
// is not reverted on a failed write: the plan is gone, and a stale persisted
// id is tolerated at read time.
func (l *FavoritesLedger) Purge(ctx context.Context, id string) error {
	l.mu.Lock()
	idx := l.indexOf(id)
	if idx < 0 {
		l.mu.Unlock()
		return nil
	}
	l.ids = append(l.ids[:idx], l.ids[idx+1:]...)
	snapshot := make([]string, len(l.ids))
	copy(snapshot, l.ids)
	l.mu.Unlock()

	if err := l.remote.Save(ctx, l.owner, l.kind, snapshot); err != nil {
		return &apperr.TransportFailure{Err: err}
	}
	return nil
}

func (l *FavoritesLedger) indexOf(id string) int {
	for i, fav := range l.ids {
		if fav == id {
			return i
		}
	}
	return -1
}

// flip must be called with the lock held.
func (l *FavoritesLedger) flip(id string) {
	if idx := l.indexOf(id); idx >= 0 {
		l.ids = append(l.ids[:idx], l.ids[idx+1:]...)
		return
	}
	l.ids = append(l.ids, id)
}
