package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
)

// FolderWithCount is a folder together with the number of cards filed in it.
type FolderWithCount struct {
	domain.Folder
	CardCount int
}

// FolderStore defines the interface for folder data persistence.
type FolderStore interface {
	// Create saves a new folder.
	Create(ctx context.Context, folder *domain.Folder) error

	// GetByID retrieves a folder by its unique ID.
	// Returns ErrFolderNotFound if the folder does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Folder, error)

	// List returns all folders oldest first, with their card counts.
	List(ctx context.Context) ([]FolderWithCount, error)

	// Delete removes a folder. Cards filed in it become uncategorized.
	// Returns ErrFolderNotFound if the folder does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTxFolderStore returns a FolderStore that runs its queries on tx.
	WithTxFolderStore(tx *sql.Tx) FolderStore
}
