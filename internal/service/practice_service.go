package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/generation"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// DialogueParams selects the target words of a practice dialogue. Words from
// CardIDs are looked up by character and combined with Words.
type DialogueParams struct {
	CardIDs  []uuid.UUID
	Words    []string
	Scenario string
}

// ReflexParams describes one turn of the reflex conversation drill. Target
// words are chosen as in DialogueParams.
type ReflexParams struct {
	CardIDs  []uuid.UUID
	Words    []string
	Scenario string
	History  []domain.ChatMessage
}

// PracticeService proxies the generation port for study aids.
type PracticeService interface {
	// EnrichWord returns generated study material for a single word.
	EnrichWord(ctx context.Context, character string) (*domain.Enrichment, error)

	// GenerateDialogue returns a short conversation that uses the target words.
	GenerateDialogue(ctx context.Context, params DialogueParams) ([]domain.DialogueLine, error)

	// RespondReflex scores the learner's last message and returns the
	// tutor's reply. An empty history starts a new conversation.
	RespondReflex(ctx context.Context, params ReflexParams) (*domain.ReflexReply, error)
}

type practiceServiceImpl struct {
	cards     store.CardStore
	generator generation.Generator
	logger    *slog.Logger
}

var _ PracticeService = (*practiceServiceImpl)(nil)

// NewPracticeService creates a new PracticeService. A nil generator makes
// every call return generation.ErrUnavailable.
func NewPracticeService(
	cards store.CardStore,
	generator generation.Generator,
	logger *slog.Logger,
) (PracticeService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if generator == nil {
		generator = generation.Unavailable{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &practiceServiceImpl{
		cards:     cards,
		generator: generator,
		logger:    logger.With(slog.String("component", "practice_service")),
	}, nil
}

// EnrichWord implements PracticeService.EnrichWord
func (s *practiceServiceImpl) EnrichWord(ctx context.Context, character string) (*domain.Enrichment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	character = strings.TrimSpace(character)
	if character == "" {
		return nil, generation.ErrEmptyInput
	}

	enrichment, err := s.generator.EnrichWord(ctx, character)
	if err != nil {
		log.Warn("word enrichment failed",
			slog.String("error", err.Error()),
			slog.String("character", character))
		return nil, NewServiceError("enrich_word", "failed to enrich word", err)
	}

	return enrichment, nil
}

// GenerateDialogue implements PracticeService.GenerateDialogue
func (s *practiceServiceImpl) GenerateDialogue(
	ctx context.Context,
	params DialogueParams,
) ([]domain.DialogueLine, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	words, err := s.targetWords(ctx, "generate_dialogue", params.CardIDs, params.Words)
	if err != nil {
		return nil, err
	}

	lines, err := s.generator.GenerateDialogue(ctx, words, strings.TrimSpace(params.Scenario))
	if err != nil {
		log.Warn("dialogue generation failed",
			slog.String("error", err.Error()),
			slog.Int("word_count", len(words)))
		return nil, NewServiceError("generate_dialogue", "failed to generate dialogue", err)
	}

	log.Debug("dialogue generated", slog.Int("line_count", len(lines)))
	return lines, nil
}

// RespondReflex implements PracticeService.RespondReflex
func (s *practiceServiceImpl) RespondReflex(ctx context.Context, params ReflexParams) (*domain.ReflexReply, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateChatHistory(params.History); err != nil {
		return nil, err
	}

	words, err := s.targetWords(ctx, "respond_reflex", params.CardIDs, params.Words)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.RespondReflex(ctx, params.History, words, strings.TrimSpace(params.Scenario))
	if err != nil {
		log.Warn("reflex response failed",
			slog.String("error", err.Error()),
			slog.Int("turns", len(params.History)))
		return nil, NewServiceError("respond_reflex", "failed to respond to reflex turn", err)
	}

	if reply.Evaluation != nil {
		log.Debug("reflex turn scored", slog.Int("score", reply.Evaluation.Score))
	}
	return reply, nil
}

// targetWords collects the characters of the given cards followed by the
// extra words, trimmed and without duplicates.
func (s *practiceServiceImpl) targetWords(
	ctx context.Context,
	operation string,
	cardIDs []uuid.UUID,
	extra []string,
) ([]string, error) {
	seen := make(map[string]struct{})
	words := make([]string, 0, len(cardIDs)+len(extra))
	add := func(w string) {
		w = strings.TrimSpace(w)
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}

	for _, id := range cardIDs {
		card, err := s.cards.GetByID(ctx, id)
		if err != nil {
			return nil, NewServiceError(operation, "failed to load target card", err)
		}
		add(card.Character)
	}
	for _, w := range extra {
		add(w)
	}

	if len(words) == 0 {
		return nil, generation.ErrEmptyInput
	}
	return words, nil
}
