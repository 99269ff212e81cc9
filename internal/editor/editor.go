// Package editor bridges an ephemeral AI-generated plan candidate and a
// durable plan. The user reviews the candidate's line items, excludes the
// ones they do not want, and commits the rest as a plan draft.
package editor

import (
	"fmt"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/models"
)

// Session holds one candidate under review plus the set of included line
// items. A fresh session starts with every item included. After a commit the
// session is spent and cannot be reused.
type Session struct {
	candidate *models.GeneratedPlanCandidate
	included  map[int]bool
}

// NewSession starts a review of the given candidate with all exercises
// included.
func NewSession(candidate *models.GeneratedPlanCandidate) *Session {
	included := make(map[int]bool, len(candidate.Exercises))
	for i := range candidate.Exercises {
		included[i] = true
	}
	return &Session{
		candidate: candidate,
		included:  included,
	}
}

// Candidate returns the candidate under review, or nil after Commit.
func (s *Session) Candidate() *models.GeneratedPlanCandidate {
	return s.candidate
}

// ToggleInclude flips whether the exercise at index is part of the commit.
// An out-of-range index is a programming error and panics.
func (s *Session) ToggleInclude(index int) {
	if s.candidate == nil {
		panic("editor: toggle on a committed session")
	}
	if index < 0 || index >= len(s.candidate.Exercises) {
		panic(fmt.Sprintf("editor: exercise index %d out of range [0,%d)", index, len(s.candidate.Exercises)))
	}
	s.included[index] = !s.included[index]
}

// Included returns the indices currently marked for inclusion, in original
// order.
func (s *Session) Included() []int {
	if s.candidate == nil {
		return nil
	}
	var out []int
	for i := range s.candidate.Exercises {
		if s.included[i] {
			out = append(out, i)
		}
	}
	return out
}

// Commit builds a plan draft from the candidate's metadata and the included
// exercises, preserving their original relative order. Each exercise is
// flattened into a single "name: details" instruction; this is lossy and
// one-directional, a committed plan cannot be split back into structured
// exercises. Committing with nothing included is a ValidationError. On
// success the session's candidate is discarded.
func (s *Session) Commit() (models.Plan, error) {
	if s.candidate == nil {
		return models.Plan{}, apperr.NewValidation("nothing to commit: session already committed")
	}

	indices := s.Included()
	if len(indices) == 0 {
		return models.Plan{}, apperr.NewValidation("select at least one exercise to save the plan")
	}

	instructions := make([]string, 0, len(indices))
	for _, i := range indices {
		ex := s.candidate.Exercises[i]
		instructions = append(instructions, fmt.Sprintf("%s: %s", ex.Name, ex.Details))
	}

	draft := models.Plan{
		Kind:         models.KindWorkout,
		Name:         s.candidate.PlanName,
		Description:  s.candidate.PlanDescription,
		Category:     s.candidate.Category,
		Difficulty:   s.candidate.Difficulty,
		Duration:     s.candidate.Duration,
		Instructions: instructions,
	}

	s.candidate = nil
	s.included = nil
	return draft, nil
}
