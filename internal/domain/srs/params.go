package srs

import (
	"fmt"

	"github.com/phrazzld/hanzi-api/internal/domain"
)

// Params defines the level change and review interval applied for each grade.
type Params struct {
	// LevelDelta is added to the stored level. Fractional deltas are floored
	// after they are applied, so they never accumulate across reviews.
	LevelDelta map[domain.ReviewGrade]float64

	// IntervalDays is the time until the next review, in days.
	IntervalDays map[domain.ReviewGrade]float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	AgainLevelDelta float64
	HardLevelDelta  float64
	GoodLevelDelta  float64
	EasyLevelDelta  float64

	AgainIntervalDays float64
	HardIntervalDays  float64
	GoodIntervalDays  float64
	EasyIntervalDays  float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		LevelDelta: map[domain.ReviewGrade]float64{
			domain.GradeAgain: -1,
			domain.GradeHard:  0.5,
			domain.GradeGood:  1,
			domain.GradeEasy:  2,
		},
		IntervalDays: map[domain.ReviewGrade]float64{
			domain.GradeAgain: 0.5,
			domain.GradeHard:  1,
			domain.GradeGood:  3,
			domain.GradeEasy:  7,
		},
	}
}

// NewParams creates a Params instance from a ParamsConfig.
// Zero values in the config keep the corresponding default.
func NewParams(cfg ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	override := func(m map[domain.ReviewGrade]float64, grade domain.ReviewGrade, v float64) {
		if v != 0 {
			m[grade] = v
		}
	}

	override(params.LevelDelta, domain.GradeAgain, cfg.AgainLevelDelta)
	override(params.LevelDelta, domain.GradeHard, cfg.HardLevelDelta)
	override(params.LevelDelta, domain.GradeGood, cfg.GoodLevelDelta)
	override(params.LevelDelta, domain.GradeEasy, cfg.EasyLevelDelta)

	override(params.IntervalDays, domain.GradeAgain, cfg.AgainIntervalDays)
	override(params.IntervalDays, domain.GradeHard, cfg.HardIntervalDays)
	override(params.IntervalDays, domain.GradeGood, cfg.GoodIntervalDays)
	override(params.IntervalDays, domain.GradeEasy, cfg.EasyIntervalDays)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

// Validate checks that every grade has an entry and that all intervals are positive.
func (p *Params) Validate() error {
	if p == nil {
		return ErrNilParams
	}

	for _, grade := range domain.Grades {
		if _, ok := p.LevelDelta[grade]; !ok {
			return fmt.Errorf("%w: missing level delta for %q", ErrInvalidParams, grade)
		}

		days, ok := p.IntervalDays[grade]
		if !ok {
			return fmt.Errorf("%w: missing interval for %q", ErrInvalidParams, grade)
		}
		if days <= 0 {
			return fmt.Errorf("%w: interval for %q must be positive", ErrInvalidParams, grade)
		}
	}

	return nil
}
