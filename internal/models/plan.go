package models

import "time"

// PlanKind selects which collection a plan record lives in.
type PlanKind string

const (
	KindWorkout PlanKind = "workout"
	KindDiet    PlanKind = "diet"
)

// Collection returns the document-store collection name for the kind.
func (k PlanKind) Collection() string {
	if k == KindDiet {
		return "dietPlans"
	}
	return "workoutPlans"
}

// CategoryCollection returns the collection holding this kind's categories.
func (k PlanKind) CategoryCollection() string {
	if k == KindDiet {
		return "dietCategories"
	}
	return "categories"
}

// Plan is a named, categorized, ordered sequence of instructions. Workout and
// diet plans share one shape; the kind-specific fields are optional and left
// empty on the other kind.
type Plan struct {
	ID           string   `bson:"_id,omitempty" json:"id"`
	Kind         PlanKind `bson:"kind" json:"kind"`
	Name         string   `bson:"name" json:"name"`
	Description  string   `bson:"description" json:"description"`
	Category     string   `bson:"category" json:"category"`
	Instructions []string `bson:"instructions" json:"instructions"`
	ImageURL     string   `bson:"image_url" json:"imageUrl"`
	MediaURL     string   `bson:"media_url,omitempty" json:"mediaUrl,omitempty"`

	// Workout fields.
	Duration   string `bson:"duration,omitempty" json:"duration,omitempty"`
	Difficulty string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`

	// Diet fields.
	CaloriesPerDay string `bson:"calories_per_day,omitempty" json:"caloriesPerDay,omitempty"`
	Protein        string `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs          string `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat            string `bson:"fat,omitempty" json:"fat,omitempty"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Category describes a browsable plan category. Read-mostly; the core never
// mutates categories.
type Category struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Name        string `bson:"name" json:"name"`
	ImageURL    string `bson:"image_url" json:"imageUrl"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// WorkoutCategories and DietCategories are the category enums the generative
// service is constrained to.
var (
	WorkoutCategories = []string{"Strength Training", "Cardiovascular", "Flexibility & Mobility", "HIIT"}
	DietCategories    = []string{"Weight Loss", "Muscle Gain", "Balanced Diet", "Vegan", "Ketogenic"}
	Difficulties      = []string{"Beginner", "Intermediate", "Advanced"}
)
