package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxFolderNameLength is the maximum number of runes in a folder name.
const MaxFolderNameLength = 100

// Folder-specific validation errors
var (
	ErrFolderIDEmpty     = fmt.Errorf("%w: folder ID cannot be empty", ErrValidation)
	ErrFolderNameEmpty   = fmt.Errorf("%w: folder name cannot be empty", ErrValidation)
	ErrFolderNameTooLong = fmt.Errorf("%w: folder name is too long", ErrValidation)
)

// Folder groups cards. Cards reference a folder by ID; a folder does not own
// its cards and deleting it only clears those references.
type Folder struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFolder creates a new Folder with a generated ID.
func NewFolder(name string, now time.Time) (*Folder, error) {
	folder := &Folder{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}

	if err := folder.Validate(); err != nil {
		return nil, err
	}

	return folder, nil
}

// Validate checks if the Folder has valid data.
func (f *Folder) Validate() error {
	if f.ID == uuid.Nil {
		return ErrFolderIDEmpty
	}

	if f.Name == "" {
		return ErrFolderNameEmpty
	}

	if utf8.RuneCountInString(f.Name) > MaxFolderNameLength {
		return ErrFolderNameTooLong
	}

	return nil
}
