package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/generation"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// NewCardParams holds the input for creating a card.
type NewCardParams struct {
	Character string
	Pinyin    string
	Meaning   string
	FolderID  *uuid.UUID
	Details   domain.CardDetails

	// Enrich fills pinyin, meaning and empty details from the enrichment
	// generator before the card is validated.
	Enrich bool
}

// CardService provides card management operations.
type CardService interface {
	// CreateCard creates a new card at level 0 that is due immediately.
	CreateCard(ctx context.Context, params NewCardParams) (*domain.Card, error)

	// GetCard retrieves a card by its ID.
	GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// UpdateCard merges a validated patch into the stored card inside a
	// transaction. A referenced folder must exist.
	UpdateCard(ctx context.Context, id uuid.UUID, patch domain.CardPatch) (*domain.Card, error)

	// DeleteCard removes a card.
	DeleteCard(ctx context.Context, id uuid.UUID) error

	// ListCards returns the cards matching filter, newest first.
	ListCards(ctx context.Context, filter store.CardFilter) ([]*domain.Card, error)
}

type cardServiceImpl struct {
	cards     store.CardStore
	folders   store.FolderStore
	tx        store.Transactor
	generator generation.Enricher
	logger    *slog.Logger
	now       func() time.Time
}

var _ CardService = (*cardServiceImpl)(nil)

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cards store.CardStore,
	folders store.FolderStore,
	tx store.Transactor,
	generator generation.Enricher,
	logger *slog.Logger,
) (CardService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if folders == nil {
		return nil, domain.NewValidationError("folders", "cannot be nil", domain.ErrValidation)
	}
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if generator == nil {
		generator = generation.Unavailable{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cards:     cards,
		folders:   folders,
		tx:        tx,
		generator: generator,
		logger:    logger.With(slog.String("component", "card_service")),
		now:       time.Now,
	}, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(ctx context.Context, params NewCardParams) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	character := strings.TrimSpace(params.Character)
	pinyin := strings.TrimSpace(params.Pinyin)
	meaning := strings.TrimSpace(params.Meaning)

	var enrichment *domain.Enrichment
	if params.Enrich && character != "" {
		var err error
		enrichment, err = s.generator.EnrichWord(ctx, character)
		if err != nil {
			log.Error("failed to enrich new card",
				slog.String("error", err.Error()),
				slog.String("character", character))
			return nil, NewServiceError("create_card", "failed to enrich word", err)
		}
		if pinyin == "" {
			pinyin = enrichment.Pinyin
		}
		if meaning == "" {
			meaning = enrichment.Meaning
		}
	}

	card, err := domain.NewCard(character, pinyin, meaning, s.now())
	if err != nil {
		return nil, err
	}
	card.FolderID = params.FolderID
	card.CardDetails = trimDetails(params.Details)
	if enrichment != nil {
		enrichment.FillCard(card)
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	if err := s.cards.Create(ctx, card); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return nil, NewServiceError("create_card", "failed to save card", err)
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.Bool("enriched", enrichment != nil))
	return card, nil
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to retrieve card",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
		}
		return nil, NewServiceError("get_card", "failed to retrieve card", err)
	}

	return card, nil
}

// UpdateCard implements CardService.UpdateCard
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	id uuid.UUID,
	patch domain.CardPatch,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Card
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cards.WithTxCardStore(tx)
		txFolders := s.folders.WithTxFolderStore(tx)

		current, err := txCards.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.FolderID != nil {
			if _, err := txFolders.GetByID(ctx, *patch.FolderID); err != nil {
				return err
			}
		}

		merged, err := patch.Apply(*current, s.now())
		if err != nil {
			return err
		}

		if err := txCards.Update(ctx, merged); err != nil {
			return err
		}

		updated = merged
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update card",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
		}
		return nil, NewServiceError("update_card", "failed to update card", err)
	}

	log.Info("card updated", slog.String("card_id", id.String()))
	return updated, nil
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.cards.Delete(ctx, id); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete card",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
		}
		return NewServiceError("delete_card", "failed to delete card", err)
	}

	log.Info("card deleted", slog.String("card_id", id.String()))
	return nil
}

// ListCards implements CardService.ListCards
func (s *cardServiceImpl) ListCards(ctx context.Context, filter store.CardFilter) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if filter.FolderID != nil && filter.Uncategorized {
		return nil, ErrConflictingFilter
	}
	filter.Search = strings.TrimSpace(filter.Search)

	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		log.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, NewServiceError("list_cards", "failed to list cards", err)
	}

	return cards, nil
}

func trimDetails(d domain.CardDetails) domain.CardDetails {
	return domain.CardDetails{
		WordType:           strings.TrimSpace(d.WordType),
		GrammarNote:        strings.TrimSpace(d.GrammarNote),
		RadicalAnalysis:    strings.TrimSpace(d.RadicalAnalysis),
		Example:            strings.TrimSpace(d.Example),
		ExamplePinyin:      strings.TrimSpace(d.ExamplePinyin),
		ExampleTranslation: strings.TrimSpace(d.ExampleTranslation),
		ImageURL:           strings.TrimSpace(d.ImageURL),
	}
}
