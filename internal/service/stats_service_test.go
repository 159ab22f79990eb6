package service

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/hanzi-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	t.Parallel()

	t.Run("fills every level", func(t *testing.T) {
		t.Parallel()
		cards := &MockCardStore{}
		svc, err := NewStatsService(cards, nil)
		require.NoError(t, err)

		cards.On("CountDue", mock.Anything, fixedNow).Return(4, nil)
		cards.On("CountByLevel", mock.Anything).Return([]store.LevelCount{
			{Level: 0, Count: 5},
			{Level: 3, Count: 2},
			{Level: 5, Count: 1},
		}, nil)

		stats, err := svc.Stats(context.Background(), fixedNow)
		require.NoError(t, err)

		assert.Equal(t, 8, stats.TotalCards)
		assert.Equal(t, 4, stats.DueCards)
		assert.Equal(t, []store.LevelCount{
			{Level: 0, Count: 5},
			{Level: 1, Count: 0},
			{Level: 2, Count: 0},
			{Level: 3, Count: 2},
			{Level: 4, Count: 0},
			{Level: 5, Count: 1},
		}, stats.Levels)
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()
		cards := &MockCardStore{}
		svc, err := NewStatsService(cards, nil)
		require.NoError(t, err)

		cards.On("CountDue", mock.Anything, fixedNow).Return(0, nil)
		cards.On("CountByLevel", mock.Anything).Return([]store.LevelCount{}, nil)

		stats, err := svc.Stats(context.Background(), fixedNow)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalCards)
		assert.Len(t, stats.Levels, 6)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		cards := &MockCardStore{}
		svc, err := NewStatsService(cards, nil)
		require.NoError(t, err)

		dbErr := errors.New("connection refused")
		cards.On("CountDue", mock.Anything, fixedNow).Return(0, dbErr)

		_, err = svc.Stats(context.Background(), fixedNow)
		assert.ErrorIs(t, err, dbErr)
	})
}
