package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "ErrCardNotFound",
			err:      ErrCardNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrCardNotFound",
			err:      fmt.Errorf("failed to load card: %w", ErrCardNotFound),
			expected: true,
		},
		{
			name:     "ErrFolderNotFound",
			err:      ErrFolderNotFound,
			expected: true,
		},
		{
			name:     "store error wrapping ErrFolderNotFound",
			err:      NewStoreError("folder", "delete", "folder missing", ErrFolderNotFound),
			expected: true,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{
			name:     "wrapped ErrDuplicate",
			err:      fmt.Errorf("failed to create: %w", ErrDuplicate),
			expected: true,
		},
		{name: "ErrCardNotFound", err: ErrCardNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("card", "create", "database error", originalErr)

	expectedErrorString := "create operation on card failed: database error: database connection failed"
	if got := storeErr.Error(); got != expectedErrorString {
		t.Errorf("StoreError.Error() = %v, want %v", got, expectedErrorString)
	}

	if !errors.Is(storeErr, originalErr) {
		t.Errorf("errors.Is() not recognizing the wrapped error")
	}

	bare := NewStoreError("folder", "list", "no rows", nil)
	if got, want := bare.Error(), "list operation on folder failed: no rows"; got != want {
		t.Errorf("StoreError.Error() = %v, want %v", got, want)
	}

	var target *StoreError
	if !errors.As(fmt.Errorf("outer: %w", storeErr), &target) {
		t.Fatalf("errors.As() did not find StoreError")
	}
	if target.Entity != "card" || target.Operation != "create" {
		t.Errorf("unexpected StoreError fields: %+v", target)
	}
}
