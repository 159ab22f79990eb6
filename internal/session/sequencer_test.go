package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/domain/srs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCards(chars ...string) []domain.Card {
	cards := make([]domain.Card, 0, len(chars))
	for _, c := range chars {
		cards = append(cards, domain.Card{
			ID:        uuid.New(),
			Character: c,
			Pinyin:    "pinyin-" + c,
			Meaning:   "meaning-" + c,
		})
	}
	return cards
}

// gradeCurrent reveals the current card and grades it.
func gradeCurrent(t *testing.T, s *Sequencer, grade domain.ReviewGrade) State {
	t.Helper()
	require.NoError(t, s.Reveal())
	state, err := s.Grade(grade)
	require.NoError(t, err)
	return state
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptySession)

	_, err = New([]domain.Card{})
	assert.ErrorIs(t, err, ErrEmptySession)

	cards := makeCards("一", "二")
	cards[1].ID = cards[0].ID
	_, err = New(cards)
	assert.ErrorIs(t, err, ErrDuplicateCard)
}

func TestNewStartsAwaitingInputOnFirstCard(t *testing.T) {
	t.Parallel()
	cards := makeCards("你", "好")

	s, err := New(cards)
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingInput, s.State())
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, cards[0].ID, current.ID)
	assert.Equal(t, 0, s.Position())
	assert.Equal(t, 2, s.QueueLength())
	assert.Equal(t, 2, s.UniqueCount())
	assert.Equal(t, 0.0, s.Progress())
}

func TestAllGoodFinishesAfterNVisits(t *testing.T) {
	t.Parallel()
	cards := makeCards("一", "二", "三", "四", "五")

	s, err := New(cards)
	require.NoError(t, err)

	for i := range cards {
		current, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, cards[i].ID, current.ID, "each card visited once in order")
		gradeCurrent(t, s, domain.GradeGood)
	}

	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, len(cards), s.Visits())
	assert.Equal(t, len(cards), s.QueueLength())
	assert.Equal(t, 1.0, s.Progress())

	results := s.Results()
	require.Len(t, results, len(cards))
	for i, r := range results {
		assert.Equal(t, cards[i].ID, r.CardID)
		assert.Equal(t, domain.GradeGood, r.Grade)
	}

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestAgainRequeuesUntilPassed(t *testing.T) {
	t.Parallel()
	const n = 3
	const k = 4 // first card passes on its 4th visit

	cards := makeCards("甲", "乙", "丙")
	s, err := New(cards)
	require.NoError(t, err)

	first := cards[0].ID
	firstVisits := 0
	for s.State() != StateFinished {
		current, ok := s.Current()
		require.True(t, ok)

		grade := domain.GradeGood
		if current.ID == first {
			firstVisits++
			if firstVisits < k {
				grade = domain.GradeAgain
			}
		}
		gradeCurrent(t, s, grade)
	}

	assert.Equal(t, k, firstVisits)
	assert.Equal(t, n+(k-1), s.Visits())
	assert.Equal(t, n+(k-1), s.QueueLength())

	results := s.Results()
	require.Len(t, results, n)
	assert.Equal(t, first, results[0].CardID)
	assert.Equal(t, domain.GradeAgain, results[0].Grade, "first-seen grade wins")
}

func TestProgressTracksCompletedUniqueCards(t *testing.T) {
	t.Parallel()
	cards := makeCards("春", "夏", "秋", "冬")
	s, err := New(cards)
	require.NoError(t, err)

	grades := []domain.ReviewGrade{
		domain.GradeAgain, // 春 -> requeued
		domain.GradeHard,  // 夏 done
		domain.GradeAgain, // 秋 -> requeued
		domain.GradeEasy,  // 冬 done
		domain.GradeAgain, // 春 again
		domain.GradeGood,  // 秋 done
		domain.GradeGood,  // 春 done
	}

	previous := 0.0
	for i, g := range grades {
		state := gradeCurrent(t, s, g)
		progress := s.Progress()

		assert.Equal(t, float64(s.CompletedCount())/float64(len(cards)), progress)
		assert.GreaterOrEqual(t, progress, previous, "progress must not decrease")
		if i < len(grades)-1 {
			assert.Less(t, progress, 1.0)
			assert.Equal(t, StateAwaitingInput, state)
		}
		previous = progress
	}

	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, 1.0, s.Progress())
}

func TestSubmitAttemptMatchesTrimmedCharacter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		attempt string
		want    bool
	}{
		{name: "exact", attempt: "谢谢", want: true},
		{name: "surrounding whitespace", attempt: "  谢谢\n", want: true},
		{name: "inner whitespace", attempt: "谢 谢", want: false},
		{name: "wrong characters", attempt: "射射", want: false},
		{name: "pinyin is not accepted", attempt: "xièxie", want: false},
		{name: "empty", attempt: "", want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(makeCards("谢谢"))
			require.NoError(t, err)

			correct, err := s.SubmitAttempt(tc.attempt)
			require.NoError(t, err)
			assert.Equal(t, tc.want, correct)
			assert.Equal(t, tc.want, s.LastAttemptCorrect())
			assert.Equal(t, StateChecked, s.State())
		})
	}
}

func TestRevealForcesIncorrect(t *testing.T) {
	t.Parallel()
	s, err := New(makeCards("水"))
	require.NoError(t, err)

	require.NoError(t, s.Reveal())
	assert.Equal(t, StateChecked, s.State())
	assert.False(t, s.LastAttemptCorrect())
}

func TestInvalidTransitionsLeaveStateUntouched(t *testing.T) {
	t.Parallel()
	s, err := New(makeCards("山", "川"))
	require.NoError(t, err)

	_, err = s.Grade(domain.GradeGood)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateAwaitingInput, s.State())
	assert.Equal(t, 0, s.Visits())

	_, err = s.SubmitAttempt("山")
	require.NoError(t, err)

	_, err = s.SubmitAttempt("山")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Reveal(), ErrInvalidTransition)
	assert.Equal(t, StateChecked, s.State())
	assert.True(t, s.LastAttemptCorrect())
}

func TestInvalidGradeIsRejected(t *testing.T) {
	t.Parallel()
	s, err := New(makeCards("火"))
	require.NoError(t, err)
	require.NoError(t, s.Reveal())

	state, err := s.Grade(domain.ReviewGrade("excellent"))
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)
	assert.Equal(t, StateChecked, state)
	assert.Equal(t, 1, s.QueueLength())
	assert.Empty(t, s.Results())
}

func TestOperationsAfterFinish(t *testing.T) {
	t.Parallel()
	s, err := New(makeCards("木"))
	require.NoError(t, err)
	gradeCurrent(t, s, domain.GradeEasy)
	require.Equal(t, StateFinished, s.State())

	_, err = s.SubmitAttempt("木")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Reveal(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Abort(), ErrInvalidTransition)
	assert.Len(t, s.Results(), 1)
}

func TestAbortDiscardsResults(t *testing.T) {
	t.Parallel()
	s, err := New(makeCards("金", "土"))
	require.NoError(t, err)
	gradeCurrent(t, s, domain.GradeGood)
	require.Len(t, s.Results(), 1)

	require.NoError(t, s.Abort())
	assert.Equal(t, StateAborted, s.State())
	assert.Empty(t, s.Results())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Reveal(), ErrInvalidTransition)
}

func TestResultsAreACopy(t *testing.T) {
	t.Parallel()
	s, err := New(makeCards("日"))
	require.NoError(t, err)
	gradeCurrent(t, s, domain.GradeHard)

	results := s.Results()
	results[0].Grade = domain.GradeEasy
	assert.Equal(t, domain.GradeHard, s.Results()[0].Grade)
}

// TestSessionThenBatchScheduling walks two cards through a session and applies
// the scheduler to the first-seen results against the stored levels.
func TestSessionThenBatchScheduling(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	a := domain.Card{ID: uuid.New(), Character: "爱", Pinyin: "ài", Meaning: "love", Level: 2}
	b := domain.Card{ID: uuid.New(), Character: "病", Pinyin: "bìng", Meaning: "illness", Level: 0}

	s, err := New([]domain.Card{a, b})
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingInput, gradeCurrent(t, s, domain.GradeGood))
	assert.Equal(t, StateAwaitingInput, gradeCurrent(t, s, domain.GradeAgain))
	assert.Equal(t, 3, s.QueueLength())

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, b.ID, current.ID)
	assert.Equal(t, StateFinished, gradeCurrent(t, s, domain.GradeHard))

	results := s.Results()
	assert.Equal(t, []domain.ReviewResult{
		{CardID: a.ID, Grade: domain.GradeGood},
		{CardID: b.ID, Grade: domain.GradeAgain},
	}, results)

	stored := map[uuid.UUID]domain.Card{a.ID: a, b.ID: b}
	scheduler := srs.NewDefaultScheduler()

	next := make(map[uuid.UUID]srs.NextState)
	for _, r := range results {
		state, err := scheduler.ComputeNextState(stored[r.CardID].Level, r.Grade, now)
		require.NoError(t, err)
		next[r.CardID] = state
	}

	assert.Equal(t, 3, next[a.ID].Level)
	assert.Equal(t, now.Add(3*24*time.Hour), next[a.ID].NextReviewDate)
	assert.Equal(t, 0, next[b.ID].Level)
	assert.Equal(t, now.Add(12*time.Hour), next[b.ID].NextReviewDate)
}
