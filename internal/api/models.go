package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/service"
	"github.com/phrazzld/hanzi-api/internal/service/review_session"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// Card requests and responses

// CreateCardRequest is the payload for POST /api/cards. Pinyin and meaning
// may be omitted when Enrich is set.
type CreateCardRequest struct {
	Character          string     `json:"character"           validate:"required,max=64"`
	Pinyin             string     `json:"pinyin"`
	Meaning            string     `json:"meaning"`
	FolderID           *uuid.UUID `json:"folder_id"`
	WordType           string     `json:"word_type"`
	GrammarNote        string     `json:"grammar_note"`
	RadicalAnalysis    string     `json:"radical_analysis"`
	Example            string     `json:"example"`
	ExamplePinyin      string     `json:"example_pinyin"`
	ExampleTranslation string     `json:"example_translation"`
	ImageURL           string     `json:"image_url"           validate:"omitempty,url"`
	Enrich             bool       `json:"enrich"`
}

func (r CreateCardRequest) toParams() service.NewCardParams {
	return service.NewCardParams{
		Character: r.Character,
		Pinyin:    r.Pinyin,
		Meaning:   r.Meaning,
		FolderID:  r.FolderID,
		Details: domain.CardDetails{
			WordType:           r.WordType,
			GrammarNote:        r.GrammarNote,
			RadicalAnalysis:    r.RadicalAnalysis,
			Example:            r.Example,
			ExamplePinyin:      r.ExamplePinyin,
			ExampleTranslation: r.ExampleTranslation,
			ImageURL:           r.ImageURL,
		},
		Enrich: r.Enrich,
	}
}

// UpdateCardRequest is the payload for PATCH /api/cards/{id}. Omitted fields
// are left unchanged. ClearFolder moves the card out of its folder.
type UpdateCardRequest struct {
	Character          *string    `json:"character"`
	Pinyin             *string    `json:"pinyin"`
	Meaning            *string    `json:"meaning"`
	FolderID           *uuid.UUID `json:"folder_id"`
	ClearFolder        bool       `json:"clear_folder"`
	WordType           *string    `json:"word_type"`
	GrammarNote        *string    `json:"grammar_note"`
	RadicalAnalysis    *string    `json:"radical_analysis"`
	Example            *string    `json:"example"`
	ExamplePinyin      *string    `json:"example_pinyin"`
	ExampleTranslation *string    `json:"example_translation"`
	ImageURL           *string    `json:"image_url"`
}

func (r UpdateCardRequest) toPatch() domain.CardPatch {
	return domain.CardPatch{
		Character:          r.Character,
		Pinyin:             r.Pinyin,
		Meaning:            r.Meaning,
		FolderID:           r.FolderID,
		ClearFolder:        r.ClearFolder,
		WordType:           r.WordType,
		GrammarNote:        r.GrammarNote,
		RadicalAnalysis:    r.RadicalAnalysis,
		Example:            r.Example,
		ExamplePinyin:      r.ExamplePinyin,
		ExampleTranslation: r.ExampleTranslation,
		ImageURL:           r.ImageURL,
	}
}

// CardResponse is the wire form of a card.
type CardResponse struct {
	ID        uuid.UUID  `json:"id"`
	Character string     `json:"character"`
	Pinyin    string     `json:"pinyin"`
	Meaning   string     `json:"meaning"`
	FolderID  *uuid.UUID `json:"folder_id"`

	domain.CardDetails

	Level          int       `json:"level"`
	Mastery        string    `json:"mastery"`
	NextReviewAt   time.Time `json:"next_review_at"`
	NextReviewAtMs int64     `json:"next_review_at_ms"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func cardToResponse(card *domain.Card) *CardResponse {
	if card == nil {
		return nil
	}
	return &CardResponse{
		ID:             card.ID,
		Character:      card.Character,
		Pinyin:         card.Pinyin,
		Meaning:        card.Meaning,
		FolderID:       card.FolderID,
		CardDetails:    card.CardDetails,
		Level:          card.Level,
		Mastery:        card.Mastery().String(),
		NextReviewAt:   card.NextReviewDate,
		NextReviewAtMs: card.NextReviewDate.UnixMilli(),
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) []*CardResponse {
	out := make([]*CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

// CardListResponse wraps a card listing.
type CardListResponse struct {
	Cards []*CardResponse `json:"cards"`
	Count int             `json:"count"`
}

// Folder requests and responses

// CreateFolderRequest is the payload for POST /api/folders.
type CreateFolderRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// FolderResponse is the wire form of a folder.
type FolderResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}

func folderToResponse(f store.FolderWithCount) FolderResponse {
	return FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		CardCount: f.CardCount,
		CreatedAt: f.CreatedAt,
	}
}

// FolderListResponse wraps a folder listing.
type FolderListResponse struct {
	Folders []FolderResponse `json:"folders"`
}

// Stats

// LevelCountResponse is one bar of the mastery histogram.
type LevelCountResponse struct {
	Level   int    `json:"level"`
	Mastery string `json:"mastery"`
	Count   int    `json:"count"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	TotalCards int                  `json:"total_cards"`
	DueCards   int                  `json:"due_cards"`
	Levels     []LevelCountResponse `json:"levels"`
}

func statsToResponse(s *service.Stats) StatsResponse {
	levels := make([]LevelCountResponse, 0, len(s.Levels))
	for _, lc := range s.Levels {
		levels = append(levels, LevelCountResponse{
			Level:   lc.Level,
			Mastery: domain.MasteryLevel(lc.Level).String(),
			Count:   lc.Count,
		})
	}
	return StatsResponse{TotalCards: s.TotalCards, DueCards: s.DueCards, Levels: levels}
}

// Practice

// EnrichRequest is the payload for POST /api/cards/enrich.
type EnrichRequest struct {
	Character string `json:"character" validate:"required,max=64"`
}

// DialogueRequest is the payload for POST /api/practice/dialogue. At least
// one card or word is required.
type DialogueRequest struct {
	CardIDs  []uuid.UUID `json:"card_ids" validate:"max=20"`
	Words    []string    `json:"words"    validate:"max=20,dive,max=64"`
	Scenario string      `json:"scenario" validate:"max=200"`
}

// DialogueResponse is the body of a generated dialogue.
type DialogueResponse struct {
	Lines []domain.DialogueLine `json:"lines"`
}

// ChatMessageRequest is one turn of a reflex conversation.
type ChatMessageRequest struct {
	Role    string `json:"role"    validate:"required,oneof=user model"`
	Content string `json:"content" validate:"required,max=500"`
}

// ReflexRequest is the payload for POST /api/practice/reflex. An empty
// history asks for the opening line of a new conversation.
type ReflexRequest struct {
	CardIDs  []uuid.UUID          `json:"card_ids" validate:"max=20"`
	Words    []string             `json:"words"    validate:"max=20,dive,max=64"`
	Scenario string               `json:"scenario" validate:"max=200"`
	History  []ChatMessageRequest `json:"history"  validate:"max=50,dive"`
}

func (r ReflexRequest) toParams() service.ReflexParams {
	var history []domain.ChatMessage
	for _, m := range r.History {
		history = append(history, domain.ChatMessage{Role: domain.ChatRole(m.Role), Content: m.Content})
	}
	return service.ReflexParams{
		CardIDs:  r.CardIDs,
		Words:    r.Words,
		Scenario: r.Scenario,
		History:  history,
	}
}

// Review session

// StartReviewRequest is the payload for POST /api/review/session. A missing
// limit uses the configured default; zero selects every card.
type StartReviewRequest struct {
	FolderID      *uuid.UUID `json:"folder_id"`
	Uncategorized bool       `json:"uncategorized"`
	Limit         *int       `json:"limit" validate:"omitempty,gte=0,lte=500"`
}

// AttemptRequest is the payload for POST /api/review/session/attempt.
type AttemptRequest struct {
	Attempt string `json:"attempt"`
}

// GradeRequest is the payload for POST /api/review/session/grade.
type GradeRequest struct {
	Grade string `json:"grade" validate:"required"`
}

// SessionResponse is the wire form of a review session snapshot.
type SessionResponse struct {
	State              string                `json:"state"`
	Current            *CardResponse         `json:"current,omitempty"`
	Position           int                   `json:"position"`
	QueueLength        int                   `json:"queue_length"`
	UniqueCount        int                   `json:"unique_count"`
	CompletedCount     int                   `json:"completed_count"`
	Visits             int                   `json:"visits"`
	Progress           float64               `json:"progress"`
	LastAttemptCorrect *bool                 `json:"last_attempt_correct,omitempty"`
	Results            []domain.ReviewResult `json:"results,omitempty"`
	Persisted          bool                  `json:"persisted"`
	Updated            []*CardResponse       `json:"updated,omitempty"`
	Skipped            []uuid.UUID           `json:"skipped,omitempty"`
}

func snapshotToResponse(s *review_session.Snapshot) *SessionResponse {
	if s == nil {
		return nil
	}
	resp := &SessionResponse{
		State:              s.State.String(),
		Current:            cardToResponse(s.Current),
		Position:           s.Position,
		QueueLength:        s.QueueLength,
		UniqueCount:        s.UniqueCount,
		CompletedCount:     s.CompletedCount,
		Visits:             s.Visits,
		Progress:           s.Progress,
		LastAttemptCorrect: s.LastAttemptCorrect,
		Results:            s.Results,
		Persisted:          s.Persisted,
		Skipped:            s.Skipped,
	}
	if len(s.Updated) > 0 {
		resp.Updated = cardsToResponse(s.Updated)
	}
	return resp
}

// SessionErrorResponse carries a snapshot alongside an error, for a finished
// session whose results could not be saved.
type SessionErrorResponse struct {
	Error   string           `json:"error"`
	Code    int              `json:"-"`
	TraceID string           `json:"trace_id,omitempty"`
	Session *SessionResponse `json:"session"`
}
