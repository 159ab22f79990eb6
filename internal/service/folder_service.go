package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// FolderService provides folder management operations.
type FolderService interface {
	// CreateFolder creates a new folder with the given name.
	CreateFolder(ctx context.Context, name string) (*domain.Folder, error)

	// ListFolders returns all folders oldest first, with card counts.
	ListFolders(ctx context.Context) ([]store.FolderWithCount, error)

	// DeleteFolder removes a folder. Its cards become uncategorized in the
	// same transaction; no card is deleted.
	DeleteFolder(ctx context.Context, id uuid.UUID) error
}

type folderServiceImpl struct {
	cards   store.CardStore
	folders store.FolderStore
	tx      store.Transactor
	logger  *slog.Logger
	now     func() time.Time
}

var _ FolderService = (*folderServiceImpl)(nil)

// NewFolderService creates a new FolderService.
func NewFolderService(
	cards store.CardStore,
	folders store.FolderStore,
	tx store.Transactor,
	logger *slog.Logger,
) (FolderService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if folders == nil {
		return nil, domain.NewValidationError("folders", "cannot be nil", domain.ErrValidation)
	}
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &folderServiceImpl{
		cards:   cards,
		folders: folders,
		tx:      tx,
		logger:  logger.With(slog.String("component", "folder_service")),
		now:     time.Now,
	}, nil
}

// CreateFolder implements FolderService.CreateFolder
func (s *folderServiceImpl) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	folder, err := domain.NewFolder(name, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.folders.Create(ctx, folder); err != nil {
		log.Error("failed to create folder",
			slog.String("error", err.Error()),
			slog.String("folder_id", folder.ID.String()))
		return nil, NewServiceError("create_folder", "failed to save folder", err)
	}

	log.Info("folder created", slog.String("folder_id", folder.ID.String()))
	return folder, nil
}

// ListFolders implements FolderService.ListFolders
func (s *folderServiceImpl) ListFolders(ctx context.Context) ([]store.FolderWithCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	folders, err := s.folders.List(ctx)
	if err != nil {
		log.Error("failed to list folders", slog.String("error", err.Error()))
		return nil, NewServiceError("list_folders", "failed to list folders", err)
	}

	return folders, nil
}

// DeleteFolder implements FolderService.DeleteFolder
func (s *folderServiceImpl) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var cleared int64
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cards.WithTxCardStore(tx)
		txFolders := s.folders.WithTxFolderStore(tx)

		if _, err := txFolders.GetByID(ctx, id); err != nil {
			return err
		}

		n, err := txCards.ClearFolder(ctx, id)
		if err != nil {
			return err
		}
		cleared = n

		return txFolders.Delete(ctx, id)
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete folder",
				slog.String("error", err.Error()),
				slog.String("folder_id", id.String()))
		}
		return NewServiceError("delete_folder", "failed to delete folder", err)
	}

	log.Info("folder deleted",
		slog.String("folder_id", id.String()),
		slog.Int64("cards_uncategorized", cleared))
	return nil
}
