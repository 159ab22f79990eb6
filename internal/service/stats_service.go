package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// Stats summarises the card collection.
type Stats struct {
	TotalCards int
	DueCards   int

	// Levels holds one entry per mastery level from 0 to 5, in order.
	Levels []store.LevelCount
}

// StatsService reports collection statistics.
type StatsService interface {
	// Stats returns the total card count, the number of cards due at now and
	// a histogram over every mastery level.
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}

type statsServiceImpl struct {
	cards  store.CardStore
	logger *slog.Logger
}

var _ StatsService = (*statsServiceImpl)(nil)

// NewStatsService creates a new StatsService.
func NewStatsService(cards store.CardStore, logger *slog.Logger) (StatsService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &statsServiceImpl{
		cards:  cards,
		logger: logger.With(slog.String("component", "stats_service")),
	}, nil
}

// Stats implements StatsService.Stats
func (s *statsServiceImpl) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	due, err := s.cards.CountDue(ctx, now)
	if err != nil {
		log.Error("failed to count due cards", slog.String("error", err.Error()))
		return nil, NewServiceError("stats", "failed to count due cards", err)
	}

	counts, err := s.cards.CountByLevel(ctx)
	if err != nil {
		log.Error("failed to count cards by level", slog.String("error", err.Error()))
		return nil, NewServiceError("stats", "failed to count cards by level", err)
	}

	stats := &Stats{
		DueCards: due,
		Levels:   make([]store.LevelCount, domain.MaxLevel-domain.MinLevel+1),
	}
	for i := range stats.Levels {
		stats.Levels[i].Level = domain.MinLevel + i
	}
	for _, c := range counts {
		level := domain.ClampLevel(c.Level)
		stats.Levels[level-domain.MinLevel].Count += c.Count
		stats.TotalCards += c.Count
	}

	return stats, nil
}
