package llm

import (
	"context"
	"testing"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	resp        string
	err         error
	calls       int
	lastSchema  *genai.Schema
	lastHistory []models.ConversationTurn
	lastPrompt  string
}

func (f *fakeModel) generate(_ context.Context, schema *genai.Schema, history []models.ConversationTurn, prompt string) (string, error) {
	f.calls++
	f.lastSchema = schema
	f.lastHistory = history
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.resp, nil
}

const validCandidateJSON = `{
	"planName": "30 Minute Beginner HIIT",
	"planDescription": "Short high-intensity intervals for beginners.",
	"category": "HIIT",
	"difficulty": "Beginner",
	"duration": "30 minutes",
	"exercises": [
		{"name": "Jumping Jacks", "details": "3 sets of 30 seconds"},
		{"name": "Burpees", "details": "3 sets of 10 reps"}
	]
}`

func TestGenerateWorkoutEmptyPromptFailsFast(t *testing.T) {
	model := &fakeModel{resp: validCandidateJSON}
	g := newGeneratorWithModel(model)

	for _, prompt := range []string{"", "   ", "\n"} {
		_, err := g.GenerateWorkout(context.Background(), prompt, nil)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	}
	// The backend was never contacted.
	assert.Zero(t, model.calls)
}

func TestGenerateWorkoutParsesValidResponse(t *testing.T) {
	model := &fakeModel{resp: validCandidateJSON}
	g := newGeneratorWithModel(model)

	candidate, err := g.GenerateWorkout(context.Background(), "30 min beginner HIIT", nil)
	require.NoError(t, err)

	assert.Equal(t, "30 Minute Beginner HIIT", candidate.PlanName)
	assert.Equal(t, "HIIT", candidate.Category)
	require.Len(t, candidate.Exercises, 2)
	assert.Equal(t, "Jumping Jacks", candidate.Exercises[0].Name)

	assert.Same(t, workoutCandidateSchema, model.lastSchema)
	assert.Contains(t, model.lastPrompt, "30 min beginner HIIT")
}

func TestGenerateWorkoutPassesHistoryThrough(t *testing.T) {
	model := &fakeModel{resp: validCandidateJSON}
	g := newGeneratorWithModel(model)

	history := []models.ConversationTurn{
		{Role: models.RoleUser, Content: "30 min beginner HIIT"},
		{Role: models.RoleModel, Content: validCandidateJSON},
	}
	_, err := g.GenerateWorkout(context.Background(), "make it 45 minutes", history)
	require.NoError(t, err)

	// Passed through unmodified, oldest first.
	assert.Equal(t, history, model.lastHistory)
}

func TestGenerateWorkoutRejectsMalformedJSON(t *testing.T) {
	g := newGeneratorWithModel(&fakeModel{resp: "not json at all"})

	_, err := g.GenerateWorkout(context.Background(), "leg day", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsGeneration(err))
	assert.False(t, apperr.IsTransport(err))
}

func TestGenerateWorkoutRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown category": `{"planName":"X","planDescription":"d","category":"Yoga","difficulty":"Beginner","duration":"10 minutes","exercises":[{"name":"A","details":"B"}]}`,
		"no exercises":     `{"planName":"X","planDescription":"d","category":"HIIT","difficulty":"Beginner","duration":"10 minutes","exercises":[]}`,
		"empty plan name":  `{"planName":"","planDescription":"d","category":"HIIT","difficulty":"Beginner","duration":"10 minutes","exercises":[{"name":"A","details":"B"}]}`,
		"bad difficulty":   `{"planName":"X","planDescription":"d","category":"HIIT","difficulty":"Expert","duration":"10 minutes","exercises":[{"name":"A","details":"B"}]}`,
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			g := newGeneratorWithModel(&fakeModel{resp: resp})
			_, err := g.GenerateWorkout(context.Background(), "leg day", nil)
			require.Error(t, err)
			assert.True(t, apperr.IsGeneration(err))
		})
	}
}

func TestGenerateWorkoutReportsTransportFailure(t *testing.T) {
	g := newGeneratorWithModel(&fakeModel{err: &apperr.TransportFailure{Err: context.DeadlineExceeded}})

	_, err := g.GenerateWorkout(context.Background(), "leg day", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsTransport(err))
	assert.False(t, apperr.IsGeneration(err))
}

func TestGenerateSuggestions(t *testing.T) {
	resp := `{"suggestions":[
		{"planType":"workout","name":"Morning HIIT","description":"d","category":"HIIT","instructions":"Step 1\nStep 2","duration":"20 minutes","difficulty":"Beginner"},
		{"planType":"diet","name":"Lean Week","description":"d","category":"Weight Loss","instructions":"Meal 1\nMeal 2","caloriesPerDay":"1800 kcal"}
	]}`
	model := &fakeModel{resp: resp}
	g := newGeneratorWithModel(model)

	suggestions, err := g.GenerateSuggestions(context.Background(), "get me in shape", 2)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, models.KindWorkout, suggestions[0].PlanType)
	assert.Equal(t, models.KindDiet, suggestions[1].PlanType)
	assert.Same(t, suggestionsSchema, model.lastSchema)
}

func TestGenerateSuggestionsValidation(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		model := &fakeModel{}
		g := newGeneratorWithModel(model)
		_, err := g.GenerateSuggestions(context.Background(), " ", 3)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
		assert.Zero(t, model.calls)
	})

	t.Run("empty suggestion list", func(t *testing.T) {
		g := newGeneratorWithModel(&fakeModel{resp: `{"suggestions":[]}`})
		_, err := g.GenerateSuggestions(context.Background(), "anything", 3)
		require.Error(t, err)
		assert.True(t, apperr.IsGeneration(err))
	})

	t.Run("category from wrong kind", func(t *testing.T) {
		resp := `{"suggestions":[{"planType":"workout","name":"X","description":"d","category":"Vegan","instructions":"s"}]}`
		g := newGeneratorWithModel(&fakeModel{resp: resp})
		_, err := g.GenerateSuggestions(context.Background(), "anything", 1)
		require.Error(t, err)
		assert.True(t, apperr.IsGeneration(err))
	})
}
