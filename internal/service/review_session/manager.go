// Package review_session owns the single active review session and writes
// its results through the card store when the session finishes.
package review_session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/domain/srs"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/session"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// StartOptions selects the cards of a new session. FolderID and
// Uncategorized are mutually exclusive. A zero Limit selects every card.
type StartOptions struct {
	FolderID      *uuid.UUID
	Uncategorized bool
	Limit         int
}

// Snapshot is a read-only view of the session after an operation.
type Snapshot struct {
	State          session.State
	Current        *domain.Card
	Position       int
	QueueLength    int
	UniqueCount    int
	CompletedCount int
	Visits         int
	Progress       float64

	// LastAttemptCorrect is set only while the current card is checked.
	LastAttemptCorrect *bool

	// Results holds the first grade per card once the session has finished.
	Results []domain.ReviewResult

	// Persisted reports whether the results have been written. Updated holds
	// the rescheduled cards when they have; Skipped lists graded cards that
	// were deleted before the write.
	Persisted bool
	Updated   []*domain.Card
	Skipped   []uuid.UUID
}

// Manager runs review sessions. At most one session exists at a time.
type Manager interface {
	// Start selects cards and begins a new session.
	Start(ctx context.Context, opts StartOptions) (*Snapshot, error)

	// Snapshot returns the state of the current session.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// SubmitAttempt checks a recall attempt for the current card.
	SubmitAttempt(ctx context.Context, attempt string) (*Snapshot, error)

	// Reveal shows the answer for the current card, counting it as incorrect.
	Reveal(ctx context.Context) (*Snapshot, error)

	// Grade grades the current card. When this finishes the session the
	// results are persisted; on failure ErrPersistenceFailed is returned
	// together with the snapshot and the session is kept.
	Grade(ctx context.Context, grade domain.ReviewGrade) (*Snapshot, error)

	// RetryPersist writes the results of a finished session again.
	RetryPersist(ctx context.Context) (*Snapshot, error)

	// Abort discards the current session without writing anything.
	Abort(ctx context.Context) error
}

type manager struct {
	mu sync.Mutex

	cards     store.CardStore
	scheduler srs.Scheduler
	logger    *slog.Logger
	now       func() time.Time

	seq       *session.Sequencer
	startedAt time.Time
}

var _ Manager = (*manager)(nil)

// NewManager creates a Manager that selects and persists cards through
// cards and reschedules them with scheduler.
func NewManager(cards store.CardStore, scheduler srs.Scheduler, logger *slog.Logger) (Manager, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		return nil, domain.NewValidationError("scheduler", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &manager{
		cards:     cards,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "review_session")),
		now:       time.Now,
	}, nil
}

// Start implements Manager.Start
func (m *manager) Start(ctx context.Context, opts StartOptions) (*Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if opts.FolderID != nil && opts.Uncategorized {
		return nil, domain.NewValidationError("folder_id", "cannot be combined with uncategorized", domain.ErrValidation)
	}
	if opts.Limit < 0 {
		return nil, domain.NewValidationError("limit", "cannot be negative", domain.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq != nil {
		return nil, ErrSessionInProgress
	}

	selected, err := m.cards.ListForReview(ctx, store.ReviewFilter{
		FolderID:      opts.FolderID,
		Uncategorized: opts.Uncategorized,
		Limit:         opts.Limit,
	})
	if err != nil {
		log.Error("failed to select review cards", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to select review cards: %w", err)
	}
	if len(selected) == 0 {
		return nil, ErrNoCardsToReview
	}

	cards := make([]domain.Card, 0, len(selected))
	for _, c := range selected {
		cards = append(cards, *c)
	}

	seq, err := session.New(cards)
	if err != nil {
		return nil, err
	}

	m.seq = seq
	m.startedAt = m.now()

	log.Info("review session started", slog.Int("card_count", len(cards)))
	return snapshotOf(seq), nil
}

// Snapshot implements Manager.Snapshot
func (m *manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq == nil {
		return nil, ErrNoActiveSession
	}
	return snapshotOf(m.seq), nil
}

// SubmitAttempt implements Manager.SubmitAttempt
func (m *manager) SubmitAttempt(ctx context.Context, attempt string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq == nil {
		return nil, ErrNoActiveSession
	}
	if _, err := m.seq.SubmitAttempt(attempt); err != nil {
		return nil, err
	}
	return snapshotOf(m.seq), nil
}

// Reveal implements Manager.Reveal
func (m *manager) Reveal(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq == nil {
		return nil, ErrNoActiveSession
	}
	if err := m.seq.Reveal(); err != nil {
		return nil, err
	}
	return snapshotOf(m.seq), nil
}

// Grade implements Manager.Grade
func (m *manager) Grade(ctx context.Context, grade domain.ReviewGrade) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq == nil {
		return nil, ErrNoActiveSession
	}

	state, err := m.seq.Grade(grade)
	if err != nil {
		return nil, err
	}
	if state != session.StateFinished {
		return snapshotOf(m.seq), nil
	}

	return m.persistLocked(ctx)
}

// RetryPersist implements Manager.RetryPersist
func (m *manager) RetryPersist(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq == nil {
		return nil, ErrNoActiveSession
	}
	if m.seq.State() != session.StateFinished {
		return nil, fmt.Errorf("%w: session has not finished", session.ErrInvalidTransition)
	}

	return m.persistLocked(ctx)
}

// Abort implements Manager.Abort
func (m *manager) Abort(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq == nil {
		return ErrNoActiveSession
	}

	// A finished session waiting for persistence is terminal already; its
	// results are dropped with it.
	if !m.seq.State().IsTerminal() {
		if err := m.seq.Abort(); err != nil {
			return err
		}
	}

	log.Info("review session aborted",
		slog.Int("completed", m.seq.CompletedCount()),
		slog.Int("unique", m.seq.UniqueCount()))
	m.seq = nil
	return nil
}

// persistLocked writes the results of the finished session. The caller must
// hold m.mu. On success the session is cleared.
func (m *manager) persistLocked(ctx context.Context) (*Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	results := m.seq.Results()
	snap := snapshotOf(m.seq)

	updated, err := m.cards.PersistGradedCards(ctx, results, m.scheduler, m.now())
	if err != nil {
		log.Error("failed to persist review results",
			slog.String("error", err.Error()),
			slog.Int("result_count", len(results)))
		return snap, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	snap.Persisted = true
	snap.Updated = updated
	snap.Skipped = skippedCards(results, updated)

	log.Info("review session persisted",
		slog.Int("result_count", len(results)),
		slog.Int("updated_count", len(updated)),
		slog.Int("skipped_count", len(snap.Skipped)),
		slog.Int("visits", m.seq.Visits()),
		slog.Duration("duration", m.now().Sub(m.startedAt)))

	m.seq = nil
	return snap, nil
}

// skippedCards returns the ids of results with no matching updated card, in
// result order.
func skippedCards(results []domain.ReviewResult, updated []*domain.Card) []uuid.UUID {
	written := make(map[uuid.UUID]struct{}, len(updated))
	for _, c := range updated {
		written[c.ID] = struct{}{}
	}

	var skipped []uuid.UUID
	for _, r := range results {
		if _, ok := written[r.CardID]; !ok {
			skipped = append(skipped, r.CardID)
		}
	}
	return skipped
}

func snapshotOf(seq *session.Sequencer) *Snapshot {
	snap := &Snapshot{
		State:          seq.State(),
		Position:       seq.Position(),
		QueueLength:    seq.QueueLength(),
		UniqueCount:    seq.UniqueCount(),
		CompletedCount: seq.CompletedCount(),
		Visits:         seq.Visits(),
		Progress:       seq.Progress(),
	}

	if card, ok := seq.Current(); ok {
		snap.Current = &card
	}

	switch snap.State {
	case session.StateChecked:
		correct := seq.LastAttemptCorrect()
		snap.LastAttemptCorrect = &correct
	case session.StateFinished:
		snap.Results = seq.Results()
	}

	return snap
}
