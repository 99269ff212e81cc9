package llm

import (
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/google/generative-ai-go/genai"
)

// workoutCandidateSchema constrains the model's output to the structured
// workout candidate: name, metadata and an ordered exercise list.
var workoutCandidateSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"planName": {
			Type:        genai.TypeString,
			Description: "A concise and catchy name for the workout plan.",
		},
		"planDescription": {
			Type:        genai.TypeString,
			Description: "A brief, one-to-two-sentence description of the workout plan.",
		},
		"category": {
			Type:        genai.TypeString,
			Enum:        models.WorkoutCategories,
			Description: "The most appropriate category for this workout.",
		},
		"difficulty": {
			Type:        genai.TypeString,
			Enum:        models.Difficulties,
			Description: "The difficulty level of the workout.",
		},
		"duration": {
			Type:        genai.TypeString,
			Description: "The estimated total time to complete the workout, e.g. \"45 minutes\".",
		},
		"exercises": {
			Type:        genai.TypeArray,
			Description: "A list of individual exercises for the workout plan.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": {
						Type:        genai.TypeString,
						Description: "The name of the exercise.",
					},
					"details": {
						Type:        genai.TypeString,
						Description: "Reps, sets or duration, e.g. \"3 sets of 10-12 reps\".",
					},
				},
				Required: []string{"name", "details"},
			},
		},
	},
	Required: []string{"planName", "planDescription", "category", "difficulty", "duration", "exercises"},
}

// suggestionsSchema is the parallel workout/diet shape used by the
// suggestions flow. Kind-specific fields are optional.
var suggestionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"planType": {
						Type: genai.TypeString,
						Enum: []string{string(models.KindWorkout), string(models.KindDiet)},
					},
					"name": {
						Type: genai.TypeString,
					},
					"description": {
						Type: genai.TypeString,
					},
					"category": {
						Type:        genai.TypeString,
						Description: "A workout or diet category matching the plan type.",
					},
					"instructions": {
						Type:        genai.TypeString,
						Description: "Step-by-step instructions, each step on a new line.",
					},
					"duration": {
						Type: genai.TypeString,
					},
					"difficulty": {
						Type: genai.TypeString,
						Enum: models.Difficulties,
					},
					"caloriesPerDay": {
						Type: genai.TypeString,
					},
					"protein": {
						Type: genai.TypeString,
					},
					"carbs": {
						Type: genai.TypeString,
					},
					"fat": {
						Type: genai.TypeString,
					},
				},
				Required: []string{"planType", "name", "description", "category", "instructions"},
			},
		},
	},
	Required: []string{"suggestions"},
}
