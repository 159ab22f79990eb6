// Package reminder runs a periodic job that logs how many cards are due for
// review.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/hanzi-api/internal/redact"
)

// checkTimeout bounds a single due-card count.
const checkTimeout = 30 * time.Second

// DueCounter counts the cards due at a point in time.
type DueCounter interface {
	CountDue(ctx context.Context, now time.Time) (int, error)
}

// Reminder periodically checks for due cards.
type Reminder struct {
	cards    DueCounter
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	scheduler *gocron.Scheduler
}

// New creates a Reminder that checks every intervalMinutes. A zero interval
// disables the job: Start and Stop become no-ops.
func New(cards DueCounter, intervalMinutes int, logger *slog.Logger) *Reminder {
	if cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cards cannot be nil for Reminder")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reminder{
		cards:    cards,
		interval: time.Duration(intervalMinutes) * time.Minute,
		logger:   logger.With(slog.String("component", "reminder")),
		now:      time.Now,
	}
}

// Enabled reports whether the job is scheduled at all.
func (r *Reminder) Enabled() bool {
	return r.interval > 0
}

// Start schedules the check and runs it asynchronously. The first check runs
// immediately.
func (r *Reminder) Start() error {
	if !r.Enabled() {
		r.logger.Info("due reminder disabled")
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler != nil {
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(r.interval).Do(r.run); err != nil {
		return err
	}
	s.StartAsync()
	r.scheduler = s

	r.logger.Info("due reminder started", slog.Duration("interval", r.interval))
	return nil
}

// Stop halts the scheduler. It is safe to call when the job never started.
func (r *Reminder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scheduler == nil {
		return
	}
	r.scheduler.Stop()
	r.scheduler = nil
	r.logger.Info("due reminder stopped")
}

func (r *Reminder) run() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	_, _ = r.Check(ctx)
}

// Check counts the due cards once and logs a reminder when any are due.
func (r *Reminder) Check(ctx context.Context) (int, error) {
	now := r.now().UTC()

	count, err := r.cards.CountDue(ctx, now)
	if err != nil {
		r.logger.Error("failed to count due cards", slog.String("error", redact.Error(err)))
		return 0, err
	}

	if count > 0 {
		r.logger.Info("cards due for review",
			slog.Int("due_count", count),
			slog.Time("checked_at", now))
	} else {
		r.logger.Debug("no cards due for review")
	}

	return count, nil
}
