package review_session

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/domain/srs"
	"github.com/phrazzld/hanzi-api/internal/session"
	"github.com/phrazzld/hanzi-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotUsed = errors.New("not used by the review session")

var testNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

// memCardStore keeps cards in memory. Only the methods the manager calls do
// real work.
type memCardStore struct {
	mu         sync.Mutex
	cards      map[uuid.UUID]*domain.Card
	order      []uuid.UUID
	persistErr error
	filters    []store.ReviewFilter
	persisted  [][]domain.ReviewResult
}

func newMemCardStore(cards ...*domain.Card) *memCardStore {
	s := &memCardStore{cards: make(map[uuid.UUID]*domain.Card)}
	for _, c := range cards {
		s.cards[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return s
}

func (s *memCardStore) ListForReview(_ context.Context, filter store.ReviewFilter) ([]*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filter)

	out := []*domain.Card{}
	for _, id := range s.order {
		c := *s.cards[id]
		out = append(out, &c)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *memCardStore) PersistGradedCards(
	_ context.Context,
	results []domain.ReviewResult,
	scheduler srs.Scheduler,
	now time.Time,
) ([]*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted = append(s.persisted, results)

	if s.persistErr != nil {
		return nil, s.persistErr
	}

	updated := make([]*domain.Card, 0, len(results))
	for _, r := range results {
		card, ok := s.cards[r.CardID]
		if !ok {
			continue
		}
		next, err := scheduler.ApplyReview(card, r.Grade, now)
		if err != nil {
			return nil, err
		}
		s.cards[r.CardID] = next
		updated = append(updated, next)
	}
	return updated, nil
}

func (s *memCardStore) Create(context.Context, *domain.Card) error { return errNotUsed }
func (s *memCardStore) Update(context.Context, *domain.Card) error { return errNotUsed }
func (s *memCardStore) Delete(context.Context, uuid.UUID) error    { return errNotUsed }

func (s *memCardStore) GetByID(context.Context, uuid.UUID) (*domain.Card, error) {
	return nil, errNotUsed
}

func (s *memCardStore) List(context.Context, store.CardFilter) ([]*domain.Card, error) {
	return nil, errNotUsed
}

func (s *memCardStore) CountDue(context.Context, time.Time) (int, error) { return 0, errNotUsed }

func (s *memCardStore) CountByLevel(context.Context) ([]store.LevelCount, error) {
	return nil, errNotUsed
}

func (s *memCardStore) ClearFolder(context.Context, uuid.UUID) (int64, error) { return 0, errNotUsed }

func (s *memCardStore) WithTxCardStore(*sql.Tx) store.CardStore { return s }

func newCard(t *testing.T, character string, level int) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(character, "pinyin", "meaning", testNow.Add(-72*time.Hour))
	require.NoError(t, err)
	card.Level = level
	return card
}

func newTestManager(t *testing.T, cards *memCardStore) *manager {
	t.Helper()
	m, err := NewManager(cards, srs.NewDefaultScheduler(), nil)
	require.NoError(t, err)

	impl := m.(*manager)
	impl.now = func() time.Time { return testNow }
	return impl
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	_, err := NewManager(nil, srs.NewDefaultScheduler(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewManager(newMemCardStore(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestManager_FullSession(t *testing.T) {
	t.Parallel()

	a := newCard(t, "好", 2)
	b := newCard(t, "学习", 0)
	cards := newMemCardStore(a, b)
	m := newTestManager(t, cards)
	ctx := context.Background()

	snap, err := m.Start(ctx, StartOptions{})
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingInput, snap.State)
	assert.Equal(t, 2, snap.UniqueCount)
	require.NotNil(t, snap.Current)
	assert.Equal(t, a.ID, snap.Current.ID)
	assert.Nil(t, snap.LastAttemptCorrect)

	snap, err = m.SubmitAttempt(ctx, " 好 ")
	require.NoError(t, err)
	assert.Equal(t, session.StateChecked, snap.State)
	require.NotNil(t, snap.LastAttemptCorrect)
	assert.True(t, *snap.LastAttemptCorrect)

	snap, err = m.Grade(ctx, domain.GradeGood)
	require.NoError(t, err)
	assert.Equal(t, b.ID, snap.Current.ID)
	assert.InDelta(t, 0.5, snap.Progress, 1e-9)

	_, err = m.Reveal(ctx)
	require.NoError(t, err)
	snap, err = m.Grade(ctx, domain.GradeAgain)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.QueueLength)
	assert.Equal(t, b.ID, snap.Current.ID)

	_, err = m.SubmitAttempt(ctx, "学")
	require.NoError(t, err)
	snap, err = m.Grade(ctx, domain.GradeHard)
	require.NoError(t, err)

	assert.Equal(t, session.StateFinished, snap.State)
	assert.True(t, snap.Persisted)
	assert.InDelta(t, 1.0, snap.Progress, 1e-9)
	assert.Equal(t, []domain.ReviewResult{
		{CardID: a.ID, Grade: domain.GradeGood},
		{CardID: b.ID, Grade: domain.GradeAgain},
	}, snap.Results)
	require.Len(t, snap.Updated, 2)
	assert.Empty(t, snap.Skipped)

	storedA := cards.cards[a.ID]
	assert.Equal(t, 3, storedA.Level)
	assert.Equal(t, testNow.Add(3*24*time.Hour), storedA.NextReviewDate)

	storedB := cards.cards[b.ID]
	assert.Equal(t, 0, storedB.Level)
	assert.Equal(t, testNow.Add(12*time.Hour), storedB.NextReviewDate)

	_, err = m.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession, "session is cleared after persisting")

	_, err = m.Start(ctx, StartOptions{})
	assert.NoError(t, err, "a new session can start once the previous one is persisted")
}

func TestManager_CardDeletedDuringSession(t *testing.T) {
	t.Parallel()

	a := newCard(t, "好", 1)
	b := newCard(t, "学", 2)
	cards := newMemCardStore(a, b)
	m := newTestManager(t, cards)
	ctx := context.Background()

	_, err := m.Start(ctx, StartOptions{})
	require.NoError(t, err)

	cards.mu.Lock()
	delete(cards.cards, a.ID)
	cards.mu.Unlock()

	_, err = m.Reveal(ctx)
	require.NoError(t, err)
	_, err = m.Grade(ctx, domain.GradeGood)
	require.NoError(t, err)
	_, err = m.Reveal(ctx)
	require.NoError(t, err)

	snap, err := m.Grade(ctx, domain.GradeGood)
	require.NoError(t, err)
	assert.True(t, snap.Persisted)
	require.Len(t, snap.Updated, 1)
	assert.Equal(t, b.ID, snap.Updated[0].ID)
	assert.Equal(t, []uuid.UUID{a.ID}, snap.Skipped)
}

func TestSkippedCards(t *testing.T) {
	t.Parallel()

	kept, gone := uuid.New(), uuid.New()
	results := []domain.ReviewResult{
		{CardID: gone, Grade: domain.GradeAgain},
		{CardID: kept, Grade: domain.GradeGood},
	}

	assert.Equal(t, []uuid.UUID{gone}, skippedCards(results, []*domain.Card{{ID: kept}}))
	assert.Nil(t, skippedCards(results, []*domain.Card{{ID: kept}, {ID: gone}}))
}

func TestManager_Start(t *testing.T) {
	t.Parallel()

	t.Run("empty selection", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, newMemCardStore())

		_, err := m.Start(context.Background(), StartOptions{})
		assert.ErrorIs(t, err, ErrNoCardsToReview)

		_, err = m.Snapshot(context.Background())
		assert.ErrorIs(t, err, ErrNoActiveSession)
	})

	t.Run("session in progress", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, newMemCardStore(newCard(t, "好", 0)))

		_, err := m.Start(context.Background(), StartOptions{})
		require.NoError(t, err)

		_, err = m.Start(context.Background(), StartOptions{})
		assert.ErrorIs(t, err, ErrSessionInProgress)
	})

	t.Run("passes filter and limit", func(t *testing.T) {
		t.Parallel()
		cards := newMemCardStore(newCard(t, "一", 0), newCard(t, "二", 0), newCard(t, "三", 0))
		m := newTestManager(t, cards)
		folderID := uuid.New()

		snap, err := m.Start(context.Background(), StartOptions{FolderID: &folderID, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, snap.UniqueCount)
		require.Len(t, cards.filters, 1)
		assert.Equal(t, store.ReviewFilter{FolderID: &folderID, Limit: 2}, cards.filters[0])
	})

	t.Run("invalid options", func(t *testing.T) {
		t.Parallel()
		cards := newMemCardStore(newCard(t, "好", 0))
		m := newTestManager(t, cards)
		folderID := uuid.New()

		_, err := m.Start(context.Background(), StartOptions{FolderID: &folderID, Uncategorized: true})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = m.Start(context.Background(), StartOptions{Limit: -1})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, cards.filters)
	})
}

func TestManager_PersistenceFailure(t *testing.T) {
	t.Parallel()

	card := newCard(t, "好", 1)
	cards := newMemCardStore(card)
	cards.persistErr = errors.New("connection reset by peer")
	m := newTestManager(t, cards)
	ctx := context.Background()

	_, err := m.Start(ctx, StartOptions{})
	require.NoError(t, err)
	_, err = m.Reveal(ctx)
	require.NoError(t, err)

	snap, err := m.Grade(ctx, domain.GradeEasy)
	require.ErrorIs(t, err, ErrPersistenceFailed)
	require.NotNil(t, snap)
	assert.Equal(t, session.StateFinished, snap.State)
	assert.False(t, snap.Persisted)
	assert.Equal(t, []domain.ReviewResult{{CardID: card.ID, Grade: domain.GradeEasy}}, snap.Results)
	assert.Equal(t, 1, cards.cards[card.ID].Level, "store is unchanged")

	snap, err = m.Snapshot(ctx)
	require.NoError(t, err, "results are kept for retry")
	assert.Equal(t, session.StateFinished, snap.State)

	_, err = m.Start(ctx, StartOptions{})
	assert.ErrorIs(t, err, ErrSessionInProgress)

	cards.mu.Lock()
	cards.persistErr = nil
	cards.mu.Unlock()

	snap, err = m.RetryPersist(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Persisted)
	assert.Equal(t, 3, cards.cards[card.ID].Level)
	assert.Len(t, cards.persisted, 2)
	assert.Equal(t, cards.persisted[0], cards.persisted[1], "retry writes the same results")
}

func TestManager_Abort(t *testing.T) {
	t.Parallel()

	t.Run("discards without persisting", func(t *testing.T) {
		t.Parallel()
		cards := newMemCardStore(newCard(t, "好", 2), newCard(t, "中", 2))
		m := newTestManager(t, cards)
		ctx := context.Background()

		_, err := m.Start(ctx, StartOptions{})
		require.NoError(t, err)
		_, err = m.Reveal(ctx)
		require.NoError(t, err)
		_, err = m.Grade(ctx, domain.GradeGood)
		require.NoError(t, err)

		require.NoError(t, m.Abort(ctx))
		assert.Empty(t, cards.persisted)

		_, err = m.Snapshot(ctx)
		assert.ErrorIs(t, err, ErrNoActiveSession)
	})

	t.Run("drops a session waiting for persistence", func(t *testing.T) {
		t.Parallel()
		cards := newMemCardStore(newCard(t, "好", 0))
		cards.persistErr = errors.New("timeout")
		m := newTestManager(t, cards)
		ctx := context.Background()

		_, err := m.Start(ctx, StartOptions{})
		require.NoError(t, err)
		_, err = m.Reveal(ctx)
		require.NoError(t, err)
		_, err = m.Grade(ctx, domain.GradeGood)
		require.ErrorIs(t, err, ErrPersistenceFailed)

		require.NoError(t, m.Abort(ctx))
		_, err = m.RetryPersist(ctx)
		assert.ErrorIs(t, err, ErrNoActiveSession)
	})

	t.Run("no session", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(t, newMemCardStore())
		assert.ErrorIs(t, m.Abort(context.Background()), ErrNoActiveSession)
	})
}

func TestManager_InvalidOperations(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, newMemCardStore(newCard(t, "好", 0)))
	ctx := context.Background()

	_, err := m.SubmitAttempt(ctx, "好")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = m.Reveal(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = m.Grade(ctx, domain.GradeGood)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = m.RetryPersist(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = m.Start(ctx, StartOptions{})
	require.NoError(t, err)

	_, err = m.Grade(ctx, domain.GradeGood)
	assert.ErrorIs(t, err, session.ErrInvalidTransition, "grading before checking")

	_, err = m.RetryPersist(ctx)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)

	_, err = m.SubmitAttempt(ctx, "不")
	require.NoError(t, err)
	_, err = m.Grade(ctx, domain.ReviewGrade("perfect"))
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)

	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.StateChecked, snap.State, "invalid grade leaves state unchanged")
	require.NotNil(t, snap.LastAttemptCorrect)
	assert.False(t, *snap.LastAttemptCorrect)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, newMemCardStore(newCard(t, "好", 0)))
	ctx := context.Background()

	var wg sync.WaitGroup
	started := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Start(ctx, StartOptions{})
			started <- err
		}()
	}
	wg.Wait()
	close(started)

	var ok, inProgress int
	for err := range started {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSessionInProgress):
			inProgress++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, inProgress)
}
