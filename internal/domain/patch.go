package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CardPatch describes a partial update to a card. A nil field leaves the
// corresponding card attribute unchanged. Level and due date are owned by the
// scheduler and cannot be patched.
type CardPatch struct {
	Character *string
	Pinyin    *string
	Meaning   *string

	// FolderID moves the card into a folder. ClearFolder removes it from its
	// folder. Setting both is invalid.
	FolderID    *uuid.UUID
	ClearFolder bool

	WordType           *string
	GrammarNote        *string
	RadicalAnalysis    *string
	Example            *string
	ExamplePinyin      *string
	ExampleTranslation *string
	ImageURL           *string
}

// IsEmpty reports whether the patch carries no changes.
func (p CardPatch) IsEmpty() bool {
	return p.Character == nil &&
		p.Pinyin == nil &&
		p.Meaning == nil &&
		p.FolderID == nil &&
		!p.ClearFolder &&
		p.WordType == nil &&
		p.GrammarNote == nil &&
		p.RadicalAnalysis == nil &&
		p.Example == nil &&
		p.ExamplePinyin == nil &&
		p.ExampleTranslation == nil &&
		p.ImageURL == nil
}

// Validate checks the patch on its own, before it is merged into a card.
func (p CardPatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}

	if p.FolderID != nil && p.ClearFolder {
		return NewValidationError("folder_id", "cannot be set while clearing the folder", ErrValidation)
	}

	if p.FolderID != nil && *p.FolderID == uuid.Nil {
		return ErrCardFolderIDInvalid
	}

	if p.Character != nil && strings.TrimSpace(*p.Character) == "" {
		return ErrCardCharacterEmpty
	}

	if p.Pinyin != nil && strings.TrimSpace(*p.Pinyin) == "" {
		return ErrCardPinyinEmpty
	}

	if p.Meaning != nil && strings.TrimSpace(*p.Meaning) == "" {
		return ErrCardMeaningEmpty
	}

	return nil
}

// Apply validates the patch and merges it into a copy of card.
// The original card is not modified. The merged card is validated as a whole.
func (p CardPatch) Apply(card Card, now time.Time) (*Card, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	merged := card
	setTrimmed(&merged.Character, p.Character)
	setTrimmed(&merged.Pinyin, p.Pinyin)
	setTrimmed(&merged.Meaning, p.Meaning)

	switch {
	case p.ClearFolder:
		merged.FolderID = nil
	case p.FolderID != nil:
		id := *p.FolderID
		merged.FolderID = &id
	}

	setTrimmed(&merged.WordType, p.WordType)
	setTrimmed(&merged.GrammarNote, p.GrammarNote)
	setTrimmed(&merged.RadicalAnalysis, p.RadicalAnalysis)
	setTrimmed(&merged.Example, p.Example)
	setTrimmed(&merged.ExamplePinyin, p.ExamplePinyin)
	setTrimmed(&merged.ExampleTranslation, p.ExampleTranslation)
	setTrimmed(&merged.ImageURL, p.ImageURL)

	merged.UpdatedAt = now.UTC().Truncate(time.Millisecond)

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	return &merged, nil
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
