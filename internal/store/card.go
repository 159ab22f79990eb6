package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/domain/srs"
)

// CardFilter narrows a card listing. FolderID and Uncategorized are mutually
// exclusive; Search matches character, pinyin or meaning case-insensitively.
type CardFilter struct {
	FolderID      *uuid.UUID
	Uncategorized bool
	Search        string
}

// ReviewFilter selects the cards eligible for a review session.
type ReviewFilter struct {
	FolderID      *uuid.UUID
	Uncategorized bool
	Limit         int
}

// LevelCount is the number of cards at one mastery level.
type LevelCount struct {
	Level int
	Count int
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. The card must pass domain validation.
	// Returns ErrFolderNotFound when FolderID references a missing folder.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Update overwrites every mutable column of an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the cards matching the filter, newest first.
	List(ctx context.Context, filter CardFilter) ([]*domain.Card, error)

	// ListForReview returns up to filter.Limit review candidates ordered by
	// next review date, then creation time. Cards are selected whether or not
	// they are due. A non-positive limit means no limit.
	ListForReview(ctx context.Context, filter ReviewFilter) ([]*domain.Card, error)

	// CountDue returns how many cards are due at or before now.
	CountDue(ctx context.Context, now time.Time) (int, error)

	// CountByLevel returns card counts per mastery level. Levels without
	// cards are omitted.
	CountByLevel(ctx context.Context) ([]LevelCount, error)

	// ClearFolder detaches every card from the given folder and returns the
	// number of cards affected.
	ClearFolder(ctx context.Context, folderID uuid.UUID) (int64, error)

	// PersistGradedCards applies the scheduler to each result against the
	// card's stored level and writes the new schedule. All updates happen in
	// one transaction: either every card is written or none is. Cards that no
	// longer exist are skipped. The updated cards are returned in result order.
	PersistGradedCards(
		ctx context.Context,
		results []domain.ReviewResult,
		scheduler srs.Scheduler,
		now time.Time,
	) ([]*domain.Card, error)

	// WithTxCardStore returns a CardStore that runs its queries on tx.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return cardStore.WithTxCardStore(tx).ClearFolder(ctx, folderID)
	//   })
	WithTxCardStore(tx *sql.Tx) CardStore
}
