package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/hanzi-api/internal/domain"
)

// Common errors
var (
	ErrNilCard       = errors.New("card cannot be nil")
	ErrNilParams     = errors.New("srs params cannot be nil")
	ErrInvalidParams = errors.New("invalid srs params")
)

// NextState is the level and due date a card moves to after a review.
type NextState struct {
	Level          int
	NextReviewDate time.Time
}

// Scheduler defines the interface for SRS scheduling operations
type Scheduler interface {
	// ComputeNextState maps a stored level and a grade to the card's next state.
	// Returns domain.ErrInvalidGrade for an unknown grade.
	ComputeNextState(currentLevel int, grade domain.ReviewGrade, now time.Time) (NextState, error)

	// ApplyReview returns a copy of card with the next state applied.
	ApplyReview(card *domain.Card, grade domain.ReviewGrade, now time.Time) (*domain.Card, error)
}

// defaultScheduler is the standard implementation of the Scheduler interface
type defaultScheduler struct {
	params *Params
}

// NewDefaultScheduler creates a new scheduler with default parameters
func NewDefaultScheduler() Scheduler {
	return &defaultScheduler{
		params: NewDefaultParams(),
	}
}

// NewSchedulerWithParams creates a new scheduler with custom parameters
func NewSchedulerWithParams(params *Params) (Scheduler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &defaultScheduler{
		params: params,
	}, nil
}

// ComputeNextState implements the Scheduler interface
func (s *defaultScheduler) ComputeNextState(
	currentLevel int,
	grade domain.ReviewGrade,
	now time.Time,
) (NextState, error) {
	if !grade.IsValid() {
		return NextState{}, fmt.Errorf("%w: %q", domain.ErrInvalidGrade, grade)
	}

	return computeNextState(currentLevel, grade, now, s.params), nil
}

// ApplyReview implements the Scheduler interface
func (s *defaultScheduler) ApplyReview(
	card *domain.Card,
	grade domain.ReviewGrade,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	next, err := s.ComputeNextState(card.Level, grade, now)
	if err != nil {
		return nil, err
	}

	updated := *card
	updated.Level = next.Level
	updated.NextReviewDate = next.NextReviewDate.UTC()
	updated.UpdatedAt = now.UTC()

	return &updated, nil
}
