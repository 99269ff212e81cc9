package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/editor"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/internal/store"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
)

// ErrStaleGeneration marks a generation response that arrived after a newer
// request was issued for the same session. The response is discarded; only
// the latest request's candidate is kept.
var ErrStaleGeneration = errors.New("stale generation response discarded")

// PlanGenerator is the slice of the generation client a session needs.
type PlanGenerator interface {
	GenerateWorkout(ctx context.Context, prompt string, history []models.ConversationTurn) (*models.GeneratedPlanCandidate, error)
}

// Session owns the plan state of one identity: a plan store and a favorites
// ledger per kind, plus the conversational generation/review state. Sessions
// are created at first use and torn down on logout; nothing is shared
// between identities.
type Session struct {
	mu     sync.Mutex
	owner  string
	gen    PlanGenerator
	stores map[models.PlanKind]*store.PlanStore
	ledger map[models.PlanKind]*store.FavoritesLedger

	// Conversational generation state. genSeq numbers requests so a slow
	// response cannot overwrite a newer one.
	genSeq  uint64
	history []models.ConversationTurn
	review  *editor.Session
}

// Owner returns the identity this session is scoped to (AnonymousOwner when
// unauthenticated).
func (s *Session) Owner() string {
	return s.owner
}

// Plans returns the session's plan store for the given kind.
func (s *Session) Plans(kind models.PlanKind) *store.PlanStore {
	return s.stores[kind]
}

// Ledger returns the session's favorites ledger for the given kind.
func (s *Session) Ledger(kind models.PlanKind) *store.FavoritesLedger {
	return s.ledger[kind]
}

// FavoritePlans returns the favorited plans that still exist, in favoriting
// order. Dangling favorite ids are filtered here rather than eagerly cleaned
// up.
func (s *Session) FavoritePlans(kind models.PlanKind) []models.Plan {
	planStore := s.stores[kind]
	var out []models.Plan
	for _, id := range s.ledger[kind].Favorites() {
		if plan, ok := planStore.GetByID(id); ok {
			out = append(out, plan)
		}
	}
	return out
}

// GenerateWorkout runs one generation request against the session's
// conversation. On success the candidate opens a fresh review with every
// exercise included, and the exchange is appended to the conversation so a
// follow-up prompt can refine it. A response that lost the race to a newer
// request is discarded and reported as ErrStaleGeneration.
func (s *Session) GenerateWorkout(ctx context.Context, prompt string) (*models.GeneratedPlanCandidate, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.NewValidation("prompt must not be empty")
	}

	s.mu.Lock()
	s.genSeq++
	seq := s.genSeq
	history := make([]models.ConversationTurn, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	candidate, err := s.gen.GenerateWorkout(ctx, prompt, history)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.genSeq {
		logger.Log.WithField("seq", seq).Info("Discarding stale generation response")
		return nil, ErrStaleGeneration
	}

	serialized, err := json.Marshal(candidate)
	if err != nil {
		return nil, &apperr.GenerationFailure{Err: err}
	}
	s.history = append(s.history,
		models.ConversationTurn{Role: models.RoleUser, Content: prompt},
		models.ConversationTurn{Role: models.RoleModel, Content: string(serialized)},
	)
	s.review = editor.NewSession(candidate)
	return candidate, nil
}

// Review returns the candidate currently under review and the included
// exercise indices, or false when nothing is under review.
func (s *Session) Review() (*models.GeneratedPlanCandidate, []int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review == nil {
		return nil, nil, false
	}
	return s.review.Candidate(), s.review.Included(), true
}

// ToggleExercise flips the inclusion of one exercise of the candidate under
// review. The index is caller input here, so range errors surface as
// ValidationErrors instead of reaching the editor's panic.
func (s *Session) ToggleExercise(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review == nil {
		return apperr.NewValidation("no generated plan is under review")
	}
	if index < 0 || index >= len(s.review.Candidate().Exercises) {
		return apperr.NewValidation("exercise index %d out of range", index)
	}
	s.review.ToggleInclude(index)
	return nil
}

// CommitReview commits the reviewed candidate into the workout plan store
// and ends the editing conversation. If the store write fails the review is
// restored exactly as it was, so the user can retry.
func (s *Session) CommitReview(ctx context.Context) (models.Plan, error) {
	s.mu.Lock()
	if s.review == nil {
		s.mu.Unlock()
		return models.Plan{}, apperr.NewValidation("no generated plan is under review")
	}

	candidate := s.review.Candidate()
	included := s.review.Included()
	draft, err := s.review.Commit()
	if err != nil {
		s.mu.Unlock()
		return models.Plan{}, err
	}
	s.mu.Unlock()

	plan, err := s.stores[models.KindWorkout].Add(ctx, draft)
	if err != nil {
		// Reconstruct the spent review so the candidate is not lost to a
		// transient store failure.
		restored := editor.NewSession(candidate)
		includedSet := make(map[int]bool, len(included))
		for _, i := range included {
			includedSet[i] = true
		}
		for i := range candidate.Exercises {
			if !includedSet[i] {
				restored.ToggleInclude(i)
			}
		}
		s.mu.Lock()
		s.review = restored
		s.mu.Unlock()
		return models.Plan{}, err
	}

	s.mu.Lock()
	s.review = nil
	s.history = nil
	s.mu.Unlock()
	return plan, nil
}
