package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fitdeed/fitdeed-backend/internal/models"
)

// LocalFavoritePersister keeps favorite sets in the local KV cache. It is
// the fallback for sessions without an authenticated identity, mirroring the
// web client's localStorage behavior.
type LocalFavoritePersister struct {
	cache KV
}

// NewLocalFavoritePersister creates a persister over the given cache.
func NewLocalFavoritePersister(cache KV) *LocalFavoritePersister {
	return &LocalFavoritePersister{cache: cache}
}

func favoriteKey(owner string, kind models.PlanKind) string {
	return fmt.Sprintf("favorites_%s_%s", owner, kind)
}

// Fetch returns the cached favorite ids, or an empty set for a fresh owner.
func (p *LocalFavoritePersister) Fetch(_ context.Context, owner string, kind models.PlanKind) ([]string, error) {
	raw, ok := p.cache.Get(favoriteKey(owner, kind))
	if !ok {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("corrupt favorites cache entry: %w", err)
	}
	return ids, nil
}

// Save writes the favorite ids back to the cache.
func (p *LocalFavoritePersister) Save(_ context.Context, owner string, kind models.PlanKind, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	return p.cache.Set(favoriteKey(owner, kind), string(data))
}

// LocalPlanPersister keeps a whole plan collection as one JSON document in
// the local KV cache. Used for sessions that have no remote store access.
type LocalPlanPersister struct {
	cache KV
	key   string
}

// NewLocalPlanPersister creates a persister for one owner and kind.
func NewLocalPlanPersister(cache KV, owner string, kind models.PlanKind) *LocalPlanPersister {
	if owner == "" {
		owner = AnonymousOwner
	}
	return &LocalPlanPersister{
		cache: cache,
		key:   fmt.Sprintf("plans_%s_%s", owner, kind),
	}
}

// FetchAll returns all cached plans, newest first (insertion order is
// preserved by Insert prepending).
func (p *LocalPlanPersister) FetchAll(_ context.Context) ([]models.Plan, error) {
	raw, ok := p.cache.Get(p.key)
	if !ok {
		return nil, nil
	}

	var plans []models.Plan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, fmt.Errorf("corrupt plan cache entry: %w", err)
	}
	return plans, nil
}

func (p *LocalPlanPersister) write(plans []models.Plan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("failed to marshal plans: %w", err)
	}
	return p.cache.Set(p.key, string(data))
}

// Insert prepends the plan to the cached collection.
func (p *LocalPlanPersister) Insert(ctx context.Context, plan *models.Plan) error {
	plans, err := p.FetchAll(ctx)
	if err != nil {
		return err
	}
	return p.write(append([]models.Plan{*plan}, plans...))
}

// Merge overwrites the named fields on the matching cached record.
func (p *LocalPlanPersister) Merge(ctx context.Context, id string, fields map[string]interface{}) error {
	plans, err := p.FetchAll(ctx)
	if err != nil {
		return err
	}

	for i := range plans {
		if plans[i].ID == id {
			if err := applyFields(&plans[i], fields); err != nil {
				return err
			}
			break
		}
	}
	return p.write(plans)
}

// Remove deletes the matching cached record, if any.
func (p *LocalPlanPersister) Remove(ctx context.Context, id string) error {
	plans, err := p.FetchAll(ctx)
	if err != nil {
		return err
	}

	for i := range plans {
		if plans[i].ID == id {
			plans = append(plans[:i], plans[i+1:]...)
			break
		}
	}
	return p.write(plans)
}
