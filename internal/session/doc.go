// Package session implements the review session sequencer: the state machine
// that walks a queue of cards through recall attempts and grades, re-queues
// cards graded "again", and collects one first-seen result per card for
// batch scheduling when the session ends.
package session
