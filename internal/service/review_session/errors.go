package review_session

import "errors"

// Errors returned by the Manager.
var (
	// ErrNoCardsToReview is returned when the start selection is empty.
	ErrNoCardsToReview = errors.New("no cards to review")

	// ErrSessionInProgress is returned when a session is started while
	// another one is active or still waiting to be persisted.
	ErrSessionInProgress = errors.New("a review session is already in progress")

	// ErrNoActiveSession is returned when an operation needs a session and
	// there is none.
	ErrNoActiveSession = errors.New("no active review session")

	// ErrPersistenceFailed is returned when a finished session could not be
	// written. The results are kept and can be written again with
	// RetryPersist.
	ErrPersistenceFailed = errors.New("failed to persist review results")
)
