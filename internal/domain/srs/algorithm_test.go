package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/hanzi-api/internal/domain"
)

func TestCalculateNewLevel(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  int
		grade    domain.ReviewGrade
		expected int
	}{
		{name: "Again lowers level by one", current: 3, grade: domain.GradeAgain, expected: 2},
		{name: "Again never goes below zero", current: 0, grade: domain.GradeAgain, expected: 0},
		{name: "Hard keeps an integer level", current: 2, grade: domain.GradeHard, expected: 2},
		{name: "Hard at max stays at max", current: 5, grade: domain.GradeHard, expected: 5},
		{name: "Good raises level by one", current: 2, grade: domain.GradeGood, expected: 3},
		{name: "Good caps at five", current: 5, grade: domain.GradeGood, expected: 5},
		{name: "Easy raises level by two", current: 1, grade: domain.GradeEasy, expected: 3},
		{name: "Easy caps at five", current: 4, grade: domain.GradeEasy, expected: 5},
		{name: "Out of range input is clamped high", current: 9, grade: domain.GradeAgain, expected: 5},
		{name: "Out of range input is clamped low", current: -4, grade: domain.GradeGood, expected: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := calculateNewLevel(tc.current, tc.grade, params)
			if result != tc.expected {
				t.Errorf("Expected level %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestCalculateNextReviewDate(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.UnixMilli(1_700_000_000_000).UTC()

	testCases := []struct {
		grade    domain.ReviewGrade
		expected int64
	}{
		{grade: domain.GradeAgain, expected: 43_200_000},
		{grade: domain.GradeHard, expected: 86_400_000},
		{grade: domain.GradeGood, expected: 3 * 86_400_000},
		{grade: domain.GradeEasy, expected: 7 * 86_400_000},
	}

	for _, tc := range testCases {
		next := calculateNextReviewDate(tc.grade, now, params)
		delta := next.UnixMilli() - now.UnixMilli()
		if delta != tc.expected {
			t.Errorf("%s: expected interval %d ms, got %d ms", tc.grade, tc.expected, delta)
		}
	}
}
