package models

// Exercise is one line item of a generated workout candidate.
type Exercise struct {
	Name    string `json:"name"`
	Details string `json:"details"`
}

// GeneratedPlanCandidate is an AI-proposed workout plan. It is ephemeral: it
// exists only between generation and user confirmation and is never persisted
// as-is.
type GeneratedPlanCandidate struct {
	PlanName        string     `json:"planName"`
	PlanDescription string     `json:"planDescription"`
	Category        string     `json:"category"`
	Difficulty      string     `json:"difficulty"`
	Duration        string     `json:"duration"`
	Exercises       []Exercise `json:"exercises"`
}

// PlanSuggestion is the merged workout/diet shape returned by the
// suggestions flow. Kind-specific fields are optional.
type PlanSuggestion struct {
	PlanType       PlanKind `json:"planType"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Instructions   string   `json:"instructions"`
	Duration       string   `json:"duration,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty"`
	CaloriesPerDay string   `json:"caloriesPerDay,omitempty"`
	Protein        string   `json:"protein,omitempty"`
	Carbs          string   `json:"carbs,omitempty"`
	Fat            string   `json:"fat,omitempty"`
}

// Conversation roles understood by the generative service.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ConversationTurn is one turn of context for a follow-up generation request.
// The model turn's content is the serialized form of a previously generated
// candidate. Turns are ordered oldest first and are not persisted beyond the
// editing session.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
