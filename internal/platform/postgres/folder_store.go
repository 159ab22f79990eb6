package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// PostgresFolderStore implements the store.FolderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFolderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFolderStore creates a new PostgreSQL implementation of the FolderStore interface.
func NewPostgresFolderStore(db store.DBTX, logger *slog.Logger) *PostgresFolderStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFolderStore{
		db:     db,
		logger: logger.With(slog.String("component", "folder_store")),
	}
}

var _ store.FolderStore = (*PostgresFolderStore)(nil)

// Create implements store.FolderStore.Create
func (s *PostgresFolderStore) Create(ctx context.Context, folder *domain.Folder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := folder.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, created_at) VALUES ($1, $2, $3)`,
		folder.ID, folder.Name, folder.CreatedAt)
	if err != nil {
		log.Error("failed to insert folder",
			slog.String("error", err.Error()),
			slog.String("folder_id", folder.ID.String()))
		return MapError(err)
	}

	log.Debug("folder created", slog.String("folder_id", folder.ID.String()))
	return nil
}

// GetByID implements store.FolderStore.GetByID
func (s *PostgresFolderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var folder domain.Folder
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM folders WHERE id = $1`, id,
	).Scan(&folder.ID, &folder.Name, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFolderNotFound
		}
		log.Error("failed to get folder",
			slog.String("error", err.Error()),
			slog.String("folder_id", id.String()))
		return nil, MapError(err)
	}

	folder.CreatedAt = folder.CreatedAt.UTC()
	return &folder, nil
}

// List implements store.FolderStore.List
func (s *PostgresFolderStore) List(ctx context.Context) ([]store.FolderWithCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT f.id, f.name, f.created_at, COUNT(c.id)
		FROM folders f
		LEFT JOIN cards c ON c.folder_id = f.id
		GROUP BY f.id, f.name, f.created_at
		ORDER BY f.created_at ASC, f.id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list folders", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	folders := []store.FolderWithCount{}
	for rows.Next() {
		var f store.FolderWithCount
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.CardCount); err != nil {
			log.Error("failed to scan folder row", slog.String("error", err.Error()))
			return nil, err
		}
		f.CreatedAt = f.CreatedAt.UTC()
		folders = append(folders, f)
	}

	return folders, rows.Err()
}

// Delete implements store.FolderStore.Delete
func (s *PostgresFolderStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete folder",
			slog.String("error", err.Error()),
			slog.String("folder_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrFolderNotFound); err != nil {
		return err
	}

	log.Debug("folder deleted", slog.String("folder_id", id.String()))
	return nil
}

// WithTxFolderStore implements store.FolderStore.WithTxFolderStore
func (s *PostgresFolderStore) WithTxFolderStore(tx *sql.Tx) store.FolderStore {
	return &PostgresFolderStore{
		db:     tx,
		logger: s.logger,
	}
}
