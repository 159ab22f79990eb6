package srs

import (
	"math"
	"time"

	"github.com/phrazzld/hanzi-api/internal/domain"
)

// millisPerDay is the length of a scheduling day in milliseconds.
const millisPerDay = 86_400_000

// calculateNewLevel determines the level a card moves to after a review.
//
// Parameters:
//   - currentLevel: The last persisted integer level of the card
//   - grade: The recall judgment for the review
//   - params: Configuration parameters for the SRS algorithm
//
// Returns:
//   - The new integer level, floored and clamped to [domain.MinLevel, domain.MaxLevel]
//
// Algorithm behavior:
//   - The delta for the grade is added to the stored level, then floored
//   - A "hard" review (+0.5) therefore keeps an integer level where it is
//   - The result never leaves the [0, 5] range, whatever the input level
func calculateNewLevel(currentLevel int, grade domain.ReviewGrade, params *Params) int {
	next := math.Floor(float64(currentLevel) + params.LevelDelta[grade])

	if next < float64(domain.MinLevel) {
		return domain.MinLevel
	}
	if next > float64(domain.MaxLevel) {
		return domain.MaxLevel
	}

	return int(next)
}

// calculateNextReviewDate computes when a card is due again.
//
// Parameters:
//   - grade: The recall judgment for the review
//   - now: The moment the grade is applied
//   - params: Configuration parameters for the SRS algorithm
//
// Returns:
//   - now plus the grade's interval, in whole milliseconds
func calculateNextReviewDate(grade domain.ReviewGrade, now time.Time, params *Params) time.Time {
	intervalMs := int64(math.Round(params.IntervalDays[grade] * millisPerDay))
	return now.Add(time.Duration(intervalMs) * time.Millisecond)
}

// computeNextState is the pure scheduling step shared by every Scheduler.
// The grade must already be validated.
func computeNextState(currentLevel int, grade domain.ReviewGrade, now time.Time, params *Params) NextState {
	return NextState{
		Level:          calculateNewLevel(currentLevel, grade, params),
		NextReviewDate: calculateNextReviewDate(grade, now, params),
	}
}
