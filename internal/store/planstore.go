package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanPersister is the remote document store a PlanStore mirrors. The mongo
// repositories implement it; a file-backed variant serves anonymous sessions.
type PlanPersister interface {
	FetchAll(ctx context.Context) ([]models.Plan, error)
	Insert(ctx context.Context, plan *models.Plan) error
	Merge(ctx context.Context, id string, fields map[string]interface{}) error
	Remove(ctx context.Context, id string) error
}

// PlanStore keeps a session-scoped, ordered plan collection in memory and
// mirrors every mutation to a persister. Mutations apply locally first; when
// the persistence write fails, the local change is rolled back and the error
// surfaced (rollback-on-failure, applied uniformly to every mutating call).
type PlanStore struct {
	mu     sync.Mutex
	kind   models.PlanKind
	remote PlanPersister
	plans  []models.Plan

	// purger removes a deleted plan id from the favorites ledger.
	purger func(ctx context.Context, id string) error
	// newID assigns plan ids at creation. Defaults to ObjectID hex.
	newID func() string
}

// NewPlanStore creates an empty store for one plan kind. Call Reload to
// populate it from the persister.
func NewPlanStore(kind models.PlanKind, remote PlanPersister) *PlanStore {
	return &PlanStore{
		kind:   kind,
		remote: remote,
		newID:  func() string { return primitive.NewObjectID().Hex() },
	}
}

// SetIDFunc overrides how plan ids are generated (local-only stores use
// uuid-based tokens instead of ObjectIDs).
func (s *PlanStore) SetIDFunc(fn func() string) {
	s.newID = fn
}

// SetPurger registers the favorites purge hook run after a delete.
func (s *PlanStore) SetPurger(fn func(ctx context.Context, id string) error) {
	s.purger = fn
}

// Kind returns the plan kind this store holds.
func (s *PlanStore) Kind() models.PlanKind {
	return s.kind
}

// Reload replaces the in-memory collection with the persister's contents.
func (s *PlanStore) Reload(ctx context.Context) error {
	plans, err := s.remote.FetchAll(ctx)
	if err != nil {
		return &apperr.TransportFailure{Err: err}
	}

	s.mu.Lock()
	s.plans = plans
	s.mu.Unlock()
	return nil
}

// List returns a snapshot of all plans, most recent first.
func (s *PlanStore) List() []models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

// GetByID looks up a plan. Absence is a valid outcome, not an error.
func (s *PlanStore) GetByID(id string) (models.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

// PlaceholderImage derives the placeholder image reference for a plan name.
func PlaceholderImage(name string) string {
	return "https://placehold.co/600x400.png?text=" + url.PathEscape(name)
}

// Add assigns an id and a placeholder image to the draft, inserts it at the
// head of the list and persists it. A failed persistence write removes the
// local insert again and returns a StoreWriteFailure.
func (s *PlanStore) Add(ctx context.Context, draft models.Plan) (models.Plan, error) {
	if draft.Name == "" {
		return models.Plan{}, apperr.NewValidation("plan must have a name")
	}

	draft.ID = s.newID()
	draft.Kind = s.kind
	draft.ImageURL = PlaceholderImage(draft.Name)

	s.mu.Lock()
	s.plans = append([]models.Plan{draft}, s.plans...)
	s.mu.Unlock()

	if err := s.remote.Insert(ctx, &draft); err != nil {
		// Inverse of add is delete-by-assigned-id.
		s.removeLocal(draft.ID)
		return models.Plan{}, &apperr.StoreWriteFailure{Op: "add", Err: err}
	}

	// Pick up timestamps the persister stamped on the record.
	s.mu.Lock()
	for i := range s.plans {
		if s.plans[i].ID == draft.ID {
			s.plans[i] = draft
			break
		}
	}
	s.mu.Unlock()

	return draft, nil
}

// Update overwrites only the named fields on the matching record. An absent
// id is a silent no-op. A failed persistence write restores the previous
// record.
func (s *PlanStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields = canonicalFields(fields)

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		logger.Log.WithField("plan_id", id).Debug("Update on absent plan id ignored")
		return nil
	}

	prev := s.plans[idx]
	updated := prev
	if err := applyFields(&updated, fields); err != nil {
		s.mu.Unlock()
		return err
	}
	s.plans[idx] = updated
	s.mu.Unlock()

	if err := s.remote.Merge(ctx, id, fields); err != nil {
		s.mu.Lock()
		if i := s.indexOf(id); i >= 0 {
			s.plans[i] = prev
		}
		s.mu.Unlock()
		return &apperr.StoreWriteFailure{Op: "update", Err: err}
	}
	return nil
}

// Delete removes the record and purges it from the favorites ledger.
// Deleting an absent id is not an error; the purge still runs so that a
// dangling favorite cannot survive an explicit delete.
func (s *PlanStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	var prev models.Plan
	if idx >= 0 {
		prev = s.plans[idx]
		s.plans = append(s.plans[:idx], s.plans[idx+1:]...)
	}
	s.mu.Unlock()

	if idx >= 0 {
		if err := s.remote.Remove(ctx, id); err != nil {
			s.mu.Lock()
			s.insertAt(idx, prev)
			s.mu.Unlock()
			return &apperr.StoreWriteFailure{Op: "delete", Err: err}
		}
	}

	if s.purger != nil {
		if err := s.purger(ctx, id); err != nil {
			// The plan itself is gone; a stale favorite id is tolerated at
			// read time, so this does not undo the delete.
			logger.Log.WithError(err).WithField("plan_id", id).Warn("Failed to purge favorite after delete")
		}
	}
	return nil
}

func (s *PlanStore) indexOf(id string) int {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PlanStore) removeLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.plans = append(s.plans[:i], s.plans[i+1:]...)
	}
}

func (s *PlanStore) insertAt(idx int, plan models.Plan) {
	if idx > len(s.plans) {
		idx = len(s.plans)
	}
	s.plans = append(s.plans[:idx], append([]models.Plan{plan}, s.plans[idx:]...)...)
}

// fieldAliases maps the wire (JSON) field names onto the stored ones, so a
// client can send back the keys it received.
var fieldAliases = map[string]string{
	"imageUrl":       "image_url",
	"mediaUrl":       "media_url",
	"caloriesPerDay": "calories_per_day",
}

// canonicalFields rewrites aliased keys to their stored names. The returned
// map is a copy; the caller's map is left untouched.
func canonicalFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if canon, ok := fieldAliases[key]; ok {
			key = canon
		}
		out[key] = value
	}
	return out
}

// applyFields mirrors the persister's merge semantics onto the in-memory
// record. Unknown field names are rejected before anything is written.
func applyFields(plan *models.Plan, fields map[string]interface{}) error {
	for key, value := range fields {
		switch key {
		case "instructions":
			steps, err := toStringSlice(value)
			if err != nil {
				return apperr.NewValidation("invalid instructions: %v", err)
			}
			plan.Instructions = steps
		case "name", "description", "category", "image_url", "media_url",
			"duration", "difficulty", "calories_per_day", "protein", "carbs", "fat":
			str, ok := value.(string)
			if !ok {
				return apperr.NewValidation("field %q must be a string", key)
			}
			setStringField(plan, key, str)
		default:
			return apperr.NewValidation("unknown plan field %q", key)
		}
	}
	return nil
}

func setStringField(plan *models.Plan, key, value string) {
	switch key {
	case "name":
		plan.Name = value
	case "description":
		plan.Description = value
	case "category":
		plan.Category = value
	case "image_url":
		plan.ImageURL = value
	case "media_url":
		plan.MediaURL = value
	case "duration":
		plan.Duration = value
	case "difficulty":
		plan.Difficulty = value
	case "calories_per_day":
		plan.CaloriesPerDay = value
	case "protein":
		plan.Protein = value
	case "carbs":
		plan.Carbs = value
	case "fat":
		plan.Fat = value
	}
}

// toStringSlice accepts both []string and the []interface{} a JSON decoder
// produces.
func toStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %v is not a string", item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", value)
	}
}
