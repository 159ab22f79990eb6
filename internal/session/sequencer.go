package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
)

// State is the position of a Sequencer in its review cycle.
type State int

// Sequencer states.
const (
	// StateAwaitingInput shows the current card and waits for a recall attempt.
	StateAwaitingInput State = iota

	// StateChecked holds the correctness of the attempt and waits for a grade.
	StateChecked

	// StateFinished is terminal: every unique card has a recorded result.
	StateFinished

	// StateAborted is terminal: the session was abandoned and its results dropped.
	StateAborted
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateChecked:
		return "checked"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateAborted
}

// Sequencer drives one review session over a fixed set of unique cards.
//
// Cards graded "again" are appended to the back of the queue and come round
// again; there is no retry cap. The session finishes when the last queue entry
// is graded, which happens exactly when every unique card has received a
// non-"again" grade. For each card only the first grade is kept as its result.
//
// A Sequencer is not safe for concurrent use.
type Sequencer struct {
	queue []domain.Card
	index int
	state State

	lastCorrect bool
	visits      int

	uniqueCount int
	completed   map[uuid.UUID]struct{}
	graded      map[uuid.UUID]struct{}
	results     []domain.ReviewResult
}

// New creates a Sequencer positioned on the first card, awaiting input.
// It returns ErrEmptySession for an empty list and ErrDuplicateCard when two
// cards share an ID.
func New(cards []domain.Card) (*Sequencer, error) {
	if len(cards) == 0 {
		return nil, ErrEmptySession
	}

	seen := make(map[uuid.UUID]struct{}, len(cards))
	for _, card := range cards {
		if _, ok := seen[card.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, card.ID)
		}
		seen[card.ID] = struct{}{}
	}

	queue := make([]domain.Card, len(cards))
	copy(queue, cards)

	return &Sequencer{
		queue:       queue,
		state:       StateAwaitingInput,
		uniqueCount: len(cards),
		completed:   make(map[uuid.UUID]struct{}, len(cards)),
		graded:      make(map[uuid.UUID]struct{}, len(cards)),
		results:     make([]domain.ReviewResult, 0, len(cards)),
	}, nil
}

// State returns the current state.
func (s *Sequencer) State() State {
	return s.state
}

// Current returns the card under review. The boolean is false once the
// session is finished or aborted.
func (s *Sequencer) Current() (domain.Card, bool) {
	if s.state.IsTerminal() {
		return domain.Card{}, false
	}
	return s.queue[s.index], true
}

// Position returns the zero-based index of the current visit in the queue.
func (s *Sequencer) Position() int {
	return s.index
}

// QueueLength returns the number of entries in the queue, re-queued copies included.
func (s *Sequencer) QueueLength() int {
	return len(s.queue)
}

// Visits returns how many queue entries have been graded so far.
func (s *Sequencer) Visits() int {
	return s.visits
}

// UniqueCount returns the number of unique cards the session started with.
func (s *Sequencer) UniqueCount() int {
	return s.uniqueCount
}

// CompletedCount returns how many unique cards have received a non-"again" grade.
func (s *Sequencer) CompletedCount() int {
	return len(s.completed)
}

// Progress returns CompletedCount / UniqueCount. It never decreases and
// reaches 1 exactly when the session finishes.
func (s *Sequencer) Progress() float64 {
	return float64(len(s.completed)) / float64(s.uniqueCount)
}

// LastAttemptCorrect reports the correctness determined by the most recent
// SubmitAttempt or Reveal. It is only meaningful in StateChecked.
func (s *Sequencer) LastAttemptCorrect() bool {
	return s.lastCorrect
}

// SubmitAttempt checks a recall attempt against the current card's character.
// Surrounding whitespace is ignored; the comparison is otherwise exact.
func (s *Sequencer) SubmitAttempt(attempt string) (bool, error) {
	if s.state != StateAwaitingInput {
		return false, s.transitionError("submit attempt")
	}

	s.lastCorrect = strings.TrimSpace(attempt) == s.queue[s.index].Character
	s.state = StateChecked

	return s.lastCorrect, nil
}

// Reveal gives up on the current card. It moves to StateChecked with the
// attempt counted as incorrect.
func (s *Sequencer) Reveal() error {
	if s.state != StateAwaitingInput {
		return s.transitionError("reveal")
	}

	s.lastCorrect = false
	s.state = StateChecked

	return nil
}

// Grade records the grade for the current visit and advances the queue.
// It returns the state after advancing.
func (s *Sequencer) Grade(grade domain.ReviewGrade) (State, error) {
	if s.state != StateChecked {
		return s.state, s.transitionError("grade")
	}

	if !grade.IsValid() {
		return s.state, fmt.Errorf("%w: %q", domain.ErrInvalidGrade, grade)
	}

	card := s.queue[s.index]

	if grade.Passed() {
		s.completed[card.ID] = struct{}{}
	} else {
		s.queue = append(s.queue, card)
	}

	if _, ok := s.graded[card.ID]; !ok {
		s.graded[card.ID] = struct{}{}
		s.results = append(s.results, domain.ReviewResult{CardID: card.ID, Grade: grade})
	}

	s.visits++
	s.advance()

	return s.state, nil
}

// Results returns the first grade recorded for each card, in the order the
// cards were first graded. The slice is a copy.
func (s *Sequencer) Results() []domain.ReviewResult {
	out := make([]domain.ReviewResult, len(s.results))
	copy(out, s.results)
	return out
}

// Abort abandons the session and discards its results.
func (s *Sequencer) Abort() error {
	if s.state.IsTerminal() {
		return s.transitionError("abort")
	}

	s.state = StateAborted
	s.results = nil
	s.graded = map[uuid.UUID]struct{}{}

	return nil
}

func (s *Sequencer) advance() {
	if s.index+1 < len(s.queue) {
		s.index++
		s.state = StateAwaitingInput
		s.lastCorrect = false
		return
	}

	s.state = StateFinished
}

func (s *Sequencer) transitionError(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, s.state)
}
