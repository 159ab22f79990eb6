package generation

import (
	"context"

	"github.com/phrazzld/hanzi-api/internal/domain"
)

// Enricher looks up study material for a single word.
type Enricher interface {
	// EnrichWord returns pinyin, meaning, word type, grammar note, radical
	// analysis and an example sentence for character.
	// Returns ErrEmptyInput for a blank character.
	EnrichWord(ctx context.Context, character string) (*domain.Enrichment, error)
}

// DialogueGenerator writes short practice conversations.
type DialogueGenerator interface {
	// GenerateDialogue returns a conversation between speakers "A" and "B"
	// that uses the given words, optionally set in scenario.
	// Returns ErrEmptyInput when words is empty.
	GenerateDialogue(ctx context.Context, words []string, scenario string) ([]domain.DialogueLine, error)
}

// ReflexResponder runs the reflex conversation drill: the learner answers in
// Chinese, Vietnamese or English and the tutor scores the answer and replies.
type ReflexResponder interface {
	// RespondReflex evaluates the last learner turn of history and returns
	// the tutor's next message. An empty history asks for an opening line
	// and yields no evaluation.
	// Returns ErrEmptyInput when words is empty.
	RespondReflex(
		ctx context.Context,
		history []domain.ChatMessage,
		words []string,
		scenario string,
	) (*domain.ReflexReply, error)
}

// Generator is the full generation port.
type Generator interface {
	Enricher
	DialogueGenerator
	ReflexResponder
}

// Unavailable is a Generator used when no model is configured.
// Every call returns ErrUnavailable.
type Unavailable struct{}

var _ Generator = Unavailable{}

// EnrichWord implements Enricher.
func (Unavailable) EnrichWord(context.Context, string) (*domain.Enrichment, error) {
	return nil, ErrUnavailable
}

// GenerateDialogue implements DialogueGenerator.
func (Unavailable) GenerateDialogue(context.Context, []string, string) ([]domain.DialogueLine, error) {
	return nil, ErrUnavailable
}

// RespondReflex implements ReflexResponder.
func (Unavailable) RespondReflex(context.Context, []domain.ChatMessage, []string, string) (*domain.ReflexReply, error) {
	return nil, ErrUnavailable
}
