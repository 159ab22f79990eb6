package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/service"
	"github.com/phrazzld/hanzi-api/internal/service/review_session"
	"github.com/phrazzld/hanzi-api/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) CreateCard(ctx context.Context, params service.NewCardParams) (*domain.Card, error) {
	args := m.Called(ctx, params)
	card, _ := args.Get(0).(*domain.Card)
	return card, args.Error(1)
}

func (m *MockCardService) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	args := m.Called(ctx, id)
	card, _ := args.Get(0).(*domain.Card)
	return card, args.Error(1)
}

func (m *MockCardService) UpdateCard(ctx context.Context, id uuid.UUID, patch domain.CardPatch) (*domain.Card, error) {
	args := m.Called(ctx, id, patch)
	card, _ := args.Get(0).(*domain.Card)
	return card, args.Error(1)
}

func (m *MockCardService) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCardService) ListCards(ctx context.Context, filter store.CardFilter) ([]*domain.Card, error) {
	args := m.Called(ctx, filter)
	cards, _ := args.Get(0).([]*domain.Card)
	return cards, args.Error(1)
}

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	args := m.Called(ctx, name)
	folder, _ := args.Get(0).(*domain.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) ListFolders(ctx context.Context) ([]store.FolderWithCount, error) {
	args := m.Called(ctx)
	folders, _ := args.Get(0).([]store.FolderWithCount)
	return folders, args.Error(1)
}

func (m *MockFolderService) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Stats(ctx context.Context, now time.Time) (*service.Stats, error) {
	args := m.Called(ctx, now)
	stats, _ := args.Get(0).(*service.Stats)
	return stats, args.Error(1)
}

type MockPracticeService struct {
	mock.Mock
}

func (m *MockPracticeService) EnrichWord(ctx context.Context, character string) (*domain.Enrichment, error) {
	args := m.Called(ctx, character)
	e, _ := args.Get(0).(*domain.Enrichment)
	return e, args.Error(1)
}

func (m *MockPracticeService) GenerateDialogue(
	ctx context.Context,
	params service.DialogueParams,
) ([]domain.DialogueLine, error) {
	args := m.Called(ctx, params)
	lines, _ := args.Get(0).([]domain.DialogueLine)
	return lines, args.Error(1)
}

func (m *MockPracticeService) RespondReflex(
	ctx context.Context,
	params service.ReflexParams,
) (*domain.ReflexReply, error) {
	args := m.Called(ctx, params)
	reply, _ := args.Get(0).(*domain.ReflexReply)
	return reply, args.Error(1)
}

type MockManager struct {
	mock.Mock
}

func (m *MockManager) snapshot(args mock.Arguments) (*review_session.Snapshot, error) {
	snap, _ := args.Get(0).(*review_session.Snapshot)
	return snap, args.Error(1)
}

func (m *MockManager) Start(ctx context.Context, opts review_session.StartOptions) (*review_session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, opts))
}

func (m *MockManager) Snapshot(ctx context.Context) (*review_session.Snapshot, error) {
	return m.snapshot(m.Called(ctx))
}

func (m *MockManager) SubmitAttempt(ctx context.Context, attempt string) (*review_session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, attempt))
}

func (m *MockManager) Reveal(ctx context.Context) (*review_session.Snapshot, error) {
	return m.snapshot(m.Called(ctx))
}

func (m *MockManager) Grade(ctx context.Context, grade domain.ReviewGrade) (*review_session.Snapshot, error) {
	return m.snapshot(m.Called(ctx, grade))
}

func (m *MockManager) RetryPersist(ctx context.Context) (*review_session.Snapshot, error) {
	return m.snapshot(m.Called(ctx))
}

func (m *MockManager) Abort(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ service.CardService     = (*MockCardService)(nil)
	_ service.FolderService   = (*MockFolderService)(nil)
	_ service.StatsService    = (*MockStatsService)(nil)
	_ service.PracticeService = (*MockPracticeService)(nil)
	_ review_session.Manager  = (*MockManager)(nil)
)
