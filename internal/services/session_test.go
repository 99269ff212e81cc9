package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	candidate   *models.GeneratedPlanCandidate
	err         error
	calls       int
	lastPrompt  string
	lastHistory []models.ConversationTurn

	// onGenerate, when set, runs before the response is returned. Used to
	// simulate a second request racing the one in flight.
	onGenerate func()
}

func (f *fakeGenerator) GenerateWorkout(_ context.Context, prompt string, history []models.ConversationTurn) (*models.GeneratedPlanCandidate, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastHistory = history
	if f.onGenerate != nil {
		hook := f.onGenerate
		f.onGenerate = nil
		hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	c := *f.candidate
	return &c, nil
}

func hiitCandidate(exercises int) *models.GeneratedPlanCandidate {
	c := &models.GeneratedPlanCandidate{
		PlanName:        "30 Minute HIIT",
		PlanDescription: "Short, intense intervals.",
		Category:        "HIIT",
		Difficulty:      "Beginner",
		Duration:        "30 minutes",
	}
	for i := 1; i <= exercises; i++ {
		c.Exercises = append(c.Exercises, models.Exercise{
			Name:    fmt.Sprintf("Exercise %d", i),
			Details: "3 sets of 10 reps",
		})
	}
	return c
}

func newTestManager(t *testing.T, gen PlanGenerator) *SessionManager {
	t.Helper()
	cache, err := store.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return NewSessionManager(nil, nil, nil, cache, gen)
}

func TestAnonymousSessionPersistsAcrossDrop(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeGenerator{})
	owner := m.NewAnonymousToken()

	session, err := m.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, session.Owner())

	plan, err := session.Plans(models.KindWorkout).Add(ctx, models.Plan{Name: "Leg Day"})
	require.NoError(t, err)
	require.NoError(t, session.Ledger(models.KindWorkout).Toggle(ctx, plan.ID))

	m.Drop(owner)

	// A rebuilt session loads the same state from the durable cache.
	rebuilt, err := m.Get(ctx, owner)
	require.NoError(t, err)
	require.NotSame(t, session, rebuilt)

	got, ok := rebuilt.Plans(models.KindWorkout).GetByID(plan.ID)
	require.True(t, ok)
	assert.Equal(t, "Leg Day", got.Name)
	assert.True(t, rebuilt.Ledger(models.KindWorkout).IsFavorite(plan.ID))
}

func TestSessionsAreIsolatedByOwner(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeGenerator{})

	a, err := m.Get(ctx, "anon-a")
	require.NoError(t, err)
	b, err := m.Get(ctx, "anon-b")
	require.NoError(t, err)

	_, err = a.Plans(models.KindWorkout).Add(ctx, models.Plan{Name: "Only A"})
	require.NoError(t, err)

	assert.Len(t, a.Plans(models.KindWorkout).List(), 1)
	assert.Empty(t, b.Plans(models.KindWorkout).List())
}

func TestGetReturnsSameSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeGenerator{})

	first, err := m.Get(ctx, "anon-a")
	require.NoError(t, err)
	second, err := m.Get(ctx, "anon-a")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGenerateReviewCommitFlow(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{candidate: hiitCandidate(5)}
	m := newTestManager(t, gen)

	session, err := m.Get(ctx, "anon-flow")
	require.NoError(t, err)

	candidate, err := session.GenerateWorkout(ctx, "30 min beginner HIIT")
	require.NoError(t, err)
	require.Len(t, candidate.Exercises, 5)

	// Everything starts included.
	_, included, ok := session.Review()
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, included)

	require.NoError(t, session.ToggleExercise(1))
	require.NoError(t, session.ToggleExercise(3))

	plan, err := session.CommitReview(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30 Minute HIIT", plan.Name)
	assert.Equal(t, []string{
		"Exercise 1: 3 sets of 10 reps",
		"Exercise 3: 3 sets of 10 reps",
		"Exercise 5: 3 sets of 10 reps",
	}, plan.Instructions)

	// Committed plan sits at the head of the workout store.
	plans := session.Plans(models.KindWorkout).List()
	require.NotEmpty(t, plans)
	assert.Equal(t, plan.ID, plans[0].ID)

	// Commit ends the review and the conversation.
	_, _, ok = session.Review()
	assert.False(t, ok)
	_, err = session.GenerateWorkout(ctx, "another one")
	require.NoError(t, err)
	assert.Empty(t, gen.lastHistory)
}

func TestFollowUpCarriesConversation(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{candidate: hiitCandidate(3)}
	m := newTestManager(t, gen)

	session, err := m.Get(ctx, "anon-followup")
	require.NoError(t, err)

	first, err := session.GenerateWorkout(ctx, "30 min beginner HIIT")
	require.NoError(t, err)

	_, err = session.GenerateWorkout(ctx, "make it 45 minutes")
	require.NoError(t, err)

	require.Len(t, gen.lastHistory, 2)
	assert.Equal(t, models.RoleUser, gen.lastHistory[0].Role)
	assert.Equal(t, "30 min beginner HIIT", gen.lastHistory[0].Content)
	assert.Equal(t, models.RoleModel, gen.lastHistory[1].Role)

	var echoed models.GeneratedPlanCandidate
	require.NoError(t, json.Unmarshal([]byte(gen.lastHistory[1].Content), &echoed))
	assert.Equal(t, first.PlanName, echoed.PlanName)
}

func TestStaleGenerationIsDiscarded(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{candidate: hiitCandidate(2)}
	m := newTestManager(t, gen)

	session, err := m.Get(ctx, "anon-stale")
	require.NoError(t, err)

	// While the first request is in flight, a newer one completes.
	newer := hiitCandidate(4)
	gen.onGenerate = func() {
		inner := &fakeGenerator{candidate: newer}
		session.gen = inner
		_, err := session.GenerateWorkout(ctx, "newer request")
		require.NoError(t, err)
	}

	_, err = session.GenerateWorkout(ctx, "slow request")
	require.ErrorIs(t, err, ErrStaleGeneration)

	// The review reflects the newer candidate only.
	reviewed, _, ok := session.Review()
	require.True(t, ok)
	assert.Len(t, reviewed.Exercises, 4)
}

func TestCommitReviewRestoresReviewOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{candidate: hiitCandidate(3)}
	m := newTestManager(t, gen)

	session, err := m.Get(ctx, "anon-restore")
	require.NoError(t, err)
	_, err = session.GenerateWorkout(ctx, "quick core workout")
	require.NoError(t, err)
	require.NoError(t, session.ToggleExercise(2))

	// A name-less candidate makes the store reject the draft, without
	// touching any persistence.
	reviewed, _, _ := session.Review()
	reviewed.PlanName = ""

	_, err = session.CommitReview(ctx)
	require.Error(t, err)

	// The review survives with the same selection, so the user can retry.
	_, included, ok := session.Review()
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, included)
}

func TestToggleExerciseValidation(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{candidate: hiitCandidate(2)}
	m := newTestManager(t, gen)

	session, err := m.Get(ctx, "anon-toggle")
	require.NoError(t, err)

	err = session.ToggleExercise(0)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	_, err = session.GenerateWorkout(ctx, "anything")
	require.NoError(t, err)

	for _, index := range []int{-1, 2} {
		err = session.ToggleExercise(index)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	}
	require.NoError(t, session.ToggleExercise(1))
}

func TestCommitWithoutReview(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeGenerator{})

	session, err := m.Get(ctx, "anon-noreview")
	require.NoError(t, err)

	_, err = session.CommitReview(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestFavoritePlansFiltersDanglingIDs(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, &fakeGenerator{})

	session, err := m.Get(ctx, "anon-favs")
	require.NoError(t, err)

	plan, err := session.Plans(models.KindDiet).Add(ctx, models.Plan{Name: "Lean Week"})
	require.NoError(t, err)
	require.NoError(t, session.Ledger(models.KindDiet).Toggle(ctx, plan.ID))
	require.NoError(t, session.Ledger(models.KindDiet).Toggle(ctx, "ghost-id"))

	favorites := session.FavoritePlans(models.KindDiet)
	require.Len(t, favorites, 1)
	assert.Equal(t, plan.ID, favorites[0].ID)
}
