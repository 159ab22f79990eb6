package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MasteryLevel is the 0..5 mastery indicator that drives review spacing.
type MasteryLevel int

// Mastery levels from a brand new card to a mastered one.
const (
	LevelNew MasteryLevel = iota
	LevelLearning
	LevelFamiliar
	LevelProficient
	LevelExpert
	LevelMastered
)

const (
	// MinLevel is the lowest mastery level a card can hold.
	MinLevel = int(LevelNew)

	// MaxLevel is the highest mastery level a card can hold.
	MaxLevel = int(LevelMastered)

	// MaxCharacterLength is the maximum number of runes in a card's display form.
	MaxCharacterLength = 64
)

// String returns the name of the mastery level.
func (l MasteryLevel) String() string {
	switch l {
	case LevelNew:
		return "new"
	case LevelLearning:
		return "learning"
	case LevelFamiliar:
		return "familiar"
	case LevelProficient:
		return "proficient"
	case LevelExpert:
		return "expert"
	case LevelMastered:
		return "mastered"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardCharacterEmpty is returned when a card has no display form.
	ErrCardCharacterEmpty = fmt.Errorf("%w: card character cannot be empty", ErrValidation)

	// ErrCardCharacterTooLong is returned when the display form exceeds MaxCharacterLength runes.
	ErrCardCharacterTooLong = fmt.Errorf("%w: card character is too long", ErrValidation)

	// ErrCardPinyinEmpty is returned when a card has no phonetic form.
	ErrCardPinyinEmpty = fmt.Errorf("%w: card pinyin cannot be empty", ErrValidation)

	// ErrCardMeaningEmpty is returned when a card has no meaning.
	ErrCardMeaningEmpty = fmt.Errorf("%w: card meaning cannot be empty", ErrValidation)

	// ErrCardLevelOutOfRange is returned when a card's level is outside [MinLevel, MaxLevel].
	ErrCardLevelOutOfRange = fmt.Errorf("%w: card level must be between 0 and 5", ErrValidation)

	// ErrCardFolderIDInvalid is returned when a card references the nil folder ID.
	ErrCardFolderIDInvalid = fmt.Errorf("%w: card folder ID cannot be the nil UUID", ErrValidation)
)

// CardDetails holds the optional study material attached to a card.
// None of it takes part in scheduling.
type CardDetails struct {
	WordType           string `json:"word_type,omitempty"`
	GrammarNote        string `json:"grammar_note,omitempty"`
	RadicalAnalysis    string `json:"radical_analysis,omitempty"`
	Example            string `json:"example"`
	ExamplePinyin      string `json:"example_pinyin,omitempty"`
	ExampleTranslation string `json:"example_translation,omitempty"`
	ImageURL           string `json:"image_url,omitempty"`
}

// Card is a single vocabulary word under spaced-repetition tracking.
type Card struct {
	ID        uuid.UUID  `json:"id"`
	Character string     `json:"character"`
	Pinyin    string     `json:"pinyin"`
	Meaning   string     `json:"meaning"`
	FolderID  *uuid.UUID `json:"folder_id,omitempty"`

	CardDetails

	Level          int       `json:"level"`
	NextReviewDate time.Time `json:"next_review_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCard creates a new Card at level 0 that is due immediately.
// Text fields are trimmed before validation.
func NewCard(character, pinyin, meaning string, now time.Time) (*Card, error) {
	now = now.UTC().Truncate(time.Millisecond)
	card := &Card{
		ID:             uuid.New(),
		Character:      strings.TrimSpace(character),
		Pinyin:         strings.TrimSpace(pinyin),
		Meaning:        strings.TrimSpace(meaning),
		Level:          MinLevel,
		NextReviewDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Character == "" {
		return ErrCardCharacterEmpty
	}

	if utf8.RuneCountInString(c.Character) > MaxCharacterLength {
		return ErrCardCharacterTooLong
	}

	if c.Pinyin == "" {
		return ErrCardPinyinEmpty
	}

	if c.Meaning == "" {
		return ErrCardMeaningEmpty
	}

	if c.Level < MinLevel || c.Level > MaxLevel {
		return ErrCardLevelOutOfRange
	}

	if c.FolderID != nil && *c.FolderID == uuid.Nil {
		return ErrCardFolderIDInvalid
	}

	return nil
}

// IsDue reports whether the card is eligible for review at the given time.
func (c *Card) IsDue(now time.Time) bool {
	return !c.NextReviewDate.After(now)
}

// Mastery returns the card's level as a MasteryLevel.
func (c *Card) Mastery() MasteryLevel {
	return MasteryLevel(ClampLevel(c.Level))
}

// InFolder reports whether the card belongs to the given folder.
func (c *Card) InFolder(folderID uuid.UUID) bool {
	return c.FolderID != nil && *c.FolderID == folderID
}

// ClampLevel bounds a level to the inclusive range [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
