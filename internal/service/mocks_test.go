package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/domain/srs"
	"github.com/phrazzld/hanzi-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockCardStore mocks the store.CardStore interface
type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardStore) List(ctx context.Context, filter store.CardFilter) ([]*domain.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardStore) ListForReview(ctx context.Context, filter store.ReviewFilter) ([]*domain.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardStore) CountDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockCardStore) CountByLevel(ctx context.Context) ([]store.LevelCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.LevelCount), args.Error(1)
}

func (m *MockCardStore) ClearFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, folderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardStore) PersistGradedCards(
	ctx context.Context,
	results []domain.ReviewResult,
	scheduler srs.Scheduler,
	now time.Time,
) ([]*domain.Card, error) {
	args := m.Called(ctx, results, scheduler, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Card), args.Error(1)
}

func (m *MockCardStore) WithTxCardStore(*sql.Tx) store.CardStore {
	return m
}

// MockFolderStore mocks the store.FolderStore interface
type MockFolderStore struct {
	mock.Mock
}

func (m *MockFolderStore) Create(ctx context.Context, folder *domain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *MockFolderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Folder), args.Error(1)
}

func (m *MockFolderStore) List(ctx context.Context) ([]store.FolderWithCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FolderWithCount), args.Error(1)
}

func (m *MockFolderStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFolderStore) WithTxFolderStore(*sql.Tx) store.FolderStore {
	return m
}

// MockGenerator mocks the generation.Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) EnrichWord(ctx context.Context, character string) (*domain.Enrichment, error) {
	args := m.Called(ctx, character)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrichment), args.Error(1)
}

func (m *MockGenerator) GenerateDialogue(
	ctx context.Context,
	words []string,
	scenario string,
) ([]domain.DialogueLine, error) {
	args := m.Called(ctx, words, scenario)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DialogueLine), args.Error(1)
}

func (m *MockGenerator) RespondReflex(
	ctx context.Context,
	history []domain.ChatMessage,
	words []string,
	scenario string,
) (*domain.ReflexReply, error) {
	args := m.Called(ctx, history, words, scenario)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReflexReply), args.Error(1)
}

// fakeTransactor runs the function without a database and records how often
// it was used.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	f.calls++
	return fn(ctx, nil)
}
