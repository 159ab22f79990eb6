package session

import "errors"

// Errors returned by the Sequencer. All of them are reported before any state
// changes.
var (
	// ErrEmptySession is returned when a session is started without cards.
	ErrEmptySession = errors.New("review session requires at least one card")

	// ErrDuplicateCard is returned when the starting cards contain the same ID twice.
	ErrDuplicateCard = errors.New("review session cards must be unique")

	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("operation not allowed in current session state")
)
