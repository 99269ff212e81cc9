package services

import (
	"context"
	"strings"
	"sync"

	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/internal/repository"
	"github.com/fitdeed/fitdeed-backend/internal/store"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
	"github.com/google/uuid"
)

var planKinds = []models.PlanKind{models.KindWorkout, models.KindDiet}

// SessionManager creates and caches one Session per identity. Authenticated
// sessions mirror the remote document store; anonymous sessions run entirely
// on the local durable cache, keyed by a generated session token.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	planRepos    map[models.PlanKind]*repository.PlanRepository
	favoriteRepo *repository.FavoriteRepository
	categoryRepo *repository.CategoryRepository
	cache        *store.FileCache
	gen          PlanGenerator

	catMu      sync.Mutex
	categories map[models.PlanKind][]models.Category
}

// NewSessionManager wires the manager to its persistence backends.
func NewSessionManager(
	planRepos map[models.PlanKind]*repository.PlanRepository,
	favoriteRepo *repository.FavoriteRepository,
	categoryRepo *repository.CategoryRepository,
	cache *store.FileCache,
	gen PlanGenerator,
) *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*Session),
		planRepos:    planRepos,
		favoriteRepo: favoriteRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		gen:          gen,
		categories:   make(map[models.PlanKind][]models.Category),
	}
}

// NewAnonymousToken mints a session token for an unauthenticated client.
func (m *SessionManager) NewAnonymousToken() string {
	return "anon-" + uuid.NewString()
}

// Get returns the session for the given identity, building and loading it on
// first use. owner == "" selects a shared anonymous session; clients that
// want an isolated anonymous session pass a token from NewAnonymousToken.
func (m *SessionManager) Get(ctx context.Context, owner string) (*Session, error) {
	if owner == "" {
		owner = store.AnonymousOwner
	}

	m.mu.Lock()
	if session, ok := m.sessions[owner]; ok {
		m.mu.Unlock()
		return session, nil
	}
	m.mu.Unlock()

	session, err := m.build(ctx, owner)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have built the session concurrently; keep the
	// first one so all requests share state.
	if existing, ok := m.sessions[owner]; ok {
		return existing, nil
	}
	m.sessions[owner] = session
	return session, nil
}

// Drop tears down an identity's session (logout). The next Get builds a
// fresh one, so no favorites or conversation state leaks across logins.
func (m *SessionManager) Drop(owner string) {
	if owner == "" {
		owner = store.AnonymousOwner
	}
	m.mu.Lock()
	delete(m.sessions, owner)
	m.mu.Unlock()
	logger.Log.WithField("owner", owner).Info("Session dropped")
}

// Categories returns the (read-mostly) categories for a kind, fetched once
// and cached for the process lifetime.
func (m *SessionManager) Categories(ctx context.Context, kind models.PlanKind) ([]models.Category, error) {
	m.catMu.Lock()
	defer m.catMu.Unlock()

	if cached, ok := m.categories[kind]; ok {
		return cached, nil
	}
	categories, err := m.categoryRepo.FetchAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	m.categories[kind] = categories
	return categories, nil
}

// anonymous reports whether owner selects the local-only session path. The
// HTTP layer forces every client-supplied token into the anon- namespace, so
// any other owner value originated from validated JWT claims.
func (m *SessionManager) anonymous(owner string) bool {
	return owner == store.AnonymousOwner || strings.HasPrefix(owner, "anon-")
}

func (m *SessionManager) build(ctx context.Context, owner string) (*Session, error) {
	session := &Session{
		owner:  owner,
		gen:    m.gen,
		stores: make(map[models.PlanKind]*store.PlanStore),
		ledger: make(map[models.PlanKind]*store.FavoritesLedger),
	}

	local := m.anonymous(owner)
	for _, kind := range planKinds {
		var planStore *store.PlanStore
		var favs store.FavoritePersister
		if local {
			// Anonymous sessions live entirely in the local cache, with
			// uuid-based client tokens instead of server ids.
			planStore = store.NewPlanStore(kind, store.NewLocalPlanPersister(m.cache, owner, kind))
			planStore.SetIDFunc(func() string { return uuid.NewString() })
			favs = store.NewLocalFavoritePersister(m.cache)
		} else {
			planStore = store.NewPlanStore(kind, m.planRepos[kind])
			favs = m.favoriteRepo
		}

		ledger := store.NewFavoritesLedger(kind, owner, favs)
		planStore.SetPurger(ledger.Purge)

		if err := planStore.Reload(ctx); err != nil {
			return nil, err
		}
		if err := ledger.Load(ctx); err != nil {
			return nil, err
		}

		session.stores[kind] = planStore
		session.ledger[kind] = ledger
	}

	logger.Log.WithFields(map[string]interface{}{
		"owner": owner,
		"local": local,
	}).Info("Session created")
	return session, nil
}
