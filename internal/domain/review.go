package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ReviewGrade is the qualitative recall judgment given after a review attempt.
type ReviewGrade string

// Possible review grade values, from worst to best recall.
const (
	GradeAgain ReviewGrade = "again"
	GradeHard  ReviewGrade = "hard"
	GradeGood  ReviewGrade = "good"
	GradeEasy  ReviewGrade = "easy"
)

// Grades lists every valid grade in ascending order of recall quality.
var Grades = []ReviewGrade{GradeAgain, GradeHard, GradeGood, GradeEasy}

// IsValid reports whether g is one of the four known grades.
func (g ReviewGrade) IsValid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	default:
		return false
	}
}

// Passed reports whether the grade completes a card for the current session.
func (g ReviewGrade) Passed() bool {
	return g.IsValid() && g != GradeAgain
}

// ParseReviewGrade converts a raw string into a ReviewGrade. Only the exact
// lower-case grade names are accepted.
func ParseReviewGrade(raw string) (ReviewGrade, error) {
	g := ReviewGrade(raw)
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGrade, raw)
	}
	return g, nil
}

// ReviewResult is the first grade recorded for a card during a session.
type ReviewResult struct {
	CardID uuid.UUID   `json:"card_id"`
	Grade  ReviewGrade `json:"grade"`
}
