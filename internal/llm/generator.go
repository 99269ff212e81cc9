// Package llm implements the plan generation client. The generative service
// is treated as an untrusted black box: every response is validated against
// a fixed schema before it reaches a caller, and nothing is cached or
// retried here.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/config"
	"github.com/fitdeed/fitdeed-backend/internal/models"
)

const workoutPrompt = `You are a world-class fitness expert. Your task is to analyze a user's prompt and generate a single, complete workout plan containing a list of exercises.

User's request: "%s"

Based on the request, generate a workout plan with a name, a short description, an appropriate category, difficulty, duration, and a list of exercises with their details (sets, reps, time, etc.).

Ensure you populate all fields in the output schema. If the user's prompt seems to be for a diet, you must still generate a workout. Create a workout plan named "Request appears to be for a diet" and explain in the description that you can currently only generate workout plans based on their request.`

const suggestionsPrompt = `You are a world-class fitness and nutrition expert. Analyze the user's prompt and generate up to %d plan suggestions.

User's request: "%s"

For each suggestion decide whether it is a "workout" or a "diet" plan and set planType accordingly. Fill in all the relevant fields, with each instruction step on a new line. The category must be one of the provided options for the plan type.`

const defaultSuggestionCount = 3

// Generator is the plan generation client. Every call is independent: the
// service is non-deterministic, so identical prompts may yield different
// candidates.
type Generator struct {
	model textModel
}

// NewGenerator creates a Generator backed by the Gemini API.
func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, func() error, error) {
	gm, err := newGeminiModel(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &Generator{model: gm}, gm.Close, nil
}

// newGeneratorWithModel is used by tests to inject a fake backend.
func newGeneratorWithModel(model textModel) *Generator {
	return &Generator{model: model}
}

// GenerateWorkout asks the service for a structured workout candidate.
// history, when supplied, is passed through unmodified (oldest first) so the
// service can treat the request as a follow-up edit of a previous candidate.
//
// An empty prompt fails fast with a ValidationError before any network call.
// A connectivity problem surfaces as a TransportFailure; a response that does
// not conform to the candidate schema surfaces as a GenerationFailure.
func (g *Generator) GenerateWorkout(ctx context.Context, prompt string, history []models.ConversationTurn) (*models.GeneratedPlanCandidate, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.NewValidation("prompt must not be empty")
	}

	raw, err := g.model.generate(ctx, workoutCandidateSchema, history, fmt.Sprintf(workoutPrompt, prompt))
	if err != nil {
		return nil, err
	}

	var candidate models.GeneratedPlanCandidate
	if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
		return nil, &apperr.GenerationFailure{Err: fmt.Errorf("response is not valid candidate JSON: %w", err)}
	}
	if err := validateCandidate(&candidate); err != nil {
		return nil, &apperr.GenerationFailure{Err: err}
	}

	return &candidate, nil
}

// GenerateSuggestions asks the service for up to count mixed workout/diet
// suggestions. count <= 0 selects the default.
func (g *Generator) GenerateSuggestions(ctx context.Context, prompt string, count int) ([]models.PlanSuggestion, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.NewValidation("prompt must not be empty")
	}
	if count <= 0 {
		count = defaultSuggestionCount
	}

	raw, err := g.model.generate(ctx, suggestionsSchema, nil, fmt.Sprintf(suggestionsPrompt, count, prompt))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Suggestions []models.PlanSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &apperr.GenerationFailure{Err: fmt.Errorf("response is not valid suggestions JSON: %w", err)}
	}
	if len(payload.Suggestions) == 0 {
		return nil, &apperr.GenerationFailure{Err: fmt.Errorf("service returned no suggestions")}
	}
	for i := range payload.Suggestions {
		if err := validateSuggestion(&payload.Suggestions[i]); err != nil {
			return nil, &apperr.GenerationFailure{Err: err}
		}
	}

	return payload.Suggestions, nil
}

func validateCandidate(c *models.GeneratedPlanCandidate) error {
	if strings.TrimSpace(c.PlanName) == "" {
		return fmt.Errorf("candidate has no plan name")
	}
	if !contains(models.WorkoutCategories, c.Category) {
		return fmt.Errorf("candidate category %q is not a known workout category", c.Category)
	}
	if c.Difficulty != "" && !contains(models.Difficulties, c.Difficulty) {
		return fmt.Errorf("candidate difficulty %q is not a known difficulty", c.Difficulty)
	}
	if len(c.Exercises) == 0 {
		return fmt.Errorf("candidate has no exercises")
	}
	for i, ex := range c.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("exercise %d has no name", i)
		}
	}
	return nil
}

func validateSuggestion(s *models.PlanSuggestion) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("suggestion has no name")
	}
	if strings.TrimSpace(s.Instructions) == "" {
		return fmt.Errorf("suggestion %q has no instructions", s.Name)
	}
	switch s.PlanType {
	case models.KindWorkout:
		if !contains(models.WorkoutCategories, s.Category) {
			return fmt.Errorf("suggestion %q category %q is not a known workout category", s.Name, s.Category)
		}
	case models.KindDiet:
		if !contains(models.DietCategories, s.Category) {
			return fmt.Errorf("suggestion %q category %q is not a known diet category", s.Name, s.Category)
		}
	default:
		return fmt.Errorf("suggestion %q has unknown plan type %q", s.Name, s.PlanType)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
