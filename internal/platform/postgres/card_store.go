package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/domain/srs"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/store"
)

const cardColumns = `id, character, pinyin, meaning, folder_id,
	word_type, grammar_note, radical_analysis, example, example_pinyin, example_translation, image_url,
	level, next_review_date, created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var folderID uuid.NullUUID

	err := row.Scan(
		&card.ID,
		&card.Character,
		&card.Pinyin,
		&card.Meaning,
		&folderID,
		&card.WordType,
		&card.GrammarNote,
		&card.RadicalAnalysis,
		&card.Example,
		&card.ExamplePinyin,
		&card.ExampleTranslation,
		&card.ImageURL,
		&card.Level,
		&card.NextReviewDate,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if folderID.Valid {
		id := folderID.UUID
		card.FolderID = &id
	}
	card.NextReviewDate = card.NextReviewDate.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()

	return &card, nil
}

func nullableFolderID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.Character,
		card.Pinyin,
		card.Meaning,
		nullableFolderID(card.FolderID),
		card.WordType,
		card.GrammarNote,
		card.RadicalAnalysis,
		card.Example,
		card.ExamplePinyin,
		card.ExampleTranslation,
		card.ImageURL,
		card.Level,
		card.NextReviewDate,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	log.Debug("card created", slog.String("card_id", card.ID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getByID(ctx, id, false)
}

func (s *PostgresCardStore) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	return card, nil
}

// Update implements store.CardStore.Update
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE cards
		SET character = $1, pinyin = $2, meaning = $3, folder_id = $4,
			word_type = $5, grammar_note = $6, radical_analysis = $7, example = $8,
			example_pinyin = $9, example_translation = $10, image_url = $11,
			level = $12, next_review_date = $13, updated_at = $14
		WHERE id = $15
	`

	result, err := s.db.ExecContext(ctx, query,
		card.Character,
		card.Pinyin,
		card.Meaning,
		nullableFolderID(card.FolderID),
		card.WordType,
		card.GrammarNote,
		card.RadicalAnalysis,
		card.Example,
		card.ExamplePinyin,
		card.ExampleTranslation,
		card.ImageURL,
		card.Level,
		card.NextReviewDate,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}

// folderClause appends the folder condition shared by listing queries.
func folderClause(
	conditions []string,
	args []any,
	folderID *uuid.UUID,
	uncategorized bool,
) ([]string, []any) {
	switch {
	case folderID != nil:
		args = append(args, *folderID)
		conditions = append(conditions, fmt.Sprintf("folder_id = $%d", len(args)))
	case uncategorized:
		conditions = append(conditions, "folder_id IS NULL")
	}
	return conditions, args
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

// escapeLike escapes the LIKE wildcards in a search term.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// List implements store.CardStore.List
func (s *PostgresCardStore) List(ctx context.Context, filter store.CardFilter) ([]*domain.Card, error) {
	var conditions []string
	var args []any

	conditions, args = folderClause(conditions, args, filter.FolderID, filter.Uncategorized)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(character ILIKE $%d OR pinyin ILIKE $%d OR meaning ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + cardColumns + ` FROM cards` + whereClause(conditions) +
		` ORDER BY created_at DESC, id`

	return s.queryCards(ctx, "list", query, args...)
}

// ListForReview implements store.CardStore.ListForReview
func (s *PostgresCardStore) ListForReview(
	ctx context.Context,
	filter store.ReviewFilter,
) ([]*domain.Card, error) {
	var conditions []string
	var args []any

	conditions, args = folderClause(conditions, args, filter.FolderID, filter.Uncategorized)

	query := `SELECT ` + cardColumns + ` FROM cards` + whereClause(conditions) +
		` ORDER BY next_review_date ASC, created_at ASC, id`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return s.queryCards(ctx, "list_for_review", query, args...)
}

func (s *PostgresCardStore) queryCards(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row",
				slog.String("operation", operation),
				slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("queried cards",
		slog.String("operation", operation),
		slog.Int("count", len(cards)))
	return cards, nil
}

// CountDue implements store.CardStore.CountDue
func (s *PostgresCardStore) CountDue(ctx context.Context, now time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE next_review_date <= $1`, now.UTC()).Scan(&count)
	if err != nil {
		log.Error("failed to count due cards", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	return count, nil
}

// CountByLevel implements store.CardStore.CountByLevel
func (s *PostgresCardStore) CountByLevel(ctx context.Context) ([]store.LevelCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT level, COUNT(*) FROM cards GROUP BY level ORDER BY level`)
	if err != nil {
		log.Error("failed to count cards by level", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	counts := []store.LevelCount{}
	for rows.Next() {
		var lc store.LevelCount
		if err := rows.Scan(&lc.Level, &lc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, lc)
	}

	return counts, rows.Err()
}

// ClearFolder implements store.CardStore.ClearFolder
func (s *PostgresCardStore) ClearFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET folder_id = NULL, updated_at = NOW() WHERE folder_id = $1`, folderID)
	if err != nil {
		log.Error("failed to clear folder references",
			slog.String("error", err.Error()),
			slog.String("folder_id", folderID.String()))
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("cleared folder references",
		slog.String("folder_id", folderID.String()),
		slog.Int64("cards", affected))
	return affected, nil
}

// PersistGradedCards implements store.CardStore.PersistGradedCards
func (s *PostgresCardStore) PersistGradedCards(
	ctx context.Context,
	results []domain.ReviewResult,
	scheduler srs.Scheduler,
	now time.Time,
) ([]*domain.Card, error) {
	if scheduler == nil {
		return nil, store.NewStoreError("card", "persist_graded", "scheduler is required", store.ErrInvalidEntity)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	updated := make([]*domain.Card, 0, len(results))

	if len(results) == 0 {
		return updated, nil
	}

	err := store.WithinTransaction(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		txStore := &PostgresCardStore{db: tx, logger: s.logger}

		for _, result := range results {
			card, err := txStore.getByID(ctx, result.CardID, true)
			if errors.Is(err, store.ErrCardNotFound) {
				log.Warn("graded card no longer exists, skipping",
					slog.String("card_id", result.CardID.String()))
				continue
			}
			if err != nil {
				return err
			}

			next, err := scheduler.ApplyReview(card, result.Grade, now)
			if err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx,
				`UPDATE cards SET level = $1, next_review_date = $2, updated_at = $3 WHERE id = $4`,
				next.Level,
				next.NextReviewDate,
				next.UpdatedAt,
				next.ID,
			)
			if err != nil {
				log.Error("failed to write card schedule",
					slog.String("error", err.Error()),
					slog.String("card_id", next.ID.String()))
				return MapError(err)
			}
			if err := CheckRowsAffected(res, store.ErrCardNotFound); err != nil {
				return err
			}

			updated = append(updated, next)
		}

		return nil
	})
	if err != nil {
		return nil, store.NewStoreError("card", "persist_graded", "failed to persist review results", err)
	}

	log.Info("persisted review results",
		slog.Int("results", len(results)),
		slog.Int("updated", len(updated)))
	return updated, nil
}

// WithTxCardStore implements store.CardStore.WithTxCardStore
func (s *PostgresCardStore) WithTxCardStore(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}
