package validation

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/models"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "Read", "Read", false},
		{"trimmed", "  Stretch \t", "Stretch", false},
		{"empty", "", "", true},
		{"whitespace only", " \n\t ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeName(tt.input)
			if tt.wantErr {
				if !stderrors.Is(err, errors.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClampTarget(t *testing.T) {
	for input, want := range map[int]int{-3: 1, 0: 1, 1: 1, 4: 4, 7: 7, 8: 7, 100: 7} {
		if got := ClampTarget(input); got != want {
			t.Errorf("ClampTarget(%d) = %d, want %d", input, got, want)
		}
	}
}

func TestValidateHabits(t *testing.T) {
	v := New()

	t.Run("clean set", func(t *testing.T) {
		result := v.ValidateHabits([]models.Habit{
			{ID: "a", Name: "Read", TargetPerWeek: 4, SortOrder: 0},
			{ID: "b", Name: "Run", TargetPerWeek: 3, SortOrder: 1},
		})
		if result.HasConflicts() {
			t.Errorf("expected no conflicts, got: %s", result.FormatReport())
		}
	})

	t.Run("detects problems", func(t *testing.T) {
		result := v.ValidateHabits([]models.Habit{
			{ID: "a", Name: "Read", TargetPerWeek: 4, SortOrder: 0},
			{ID: "b", Name: "read ", TargetPerWeek: 9, SortOrder: 1},
			{ID: "c", Name: "  ", TargetPerWeek: 2, SortOrder: 1},
		})

		got := make(map[ConflictType]int)
		for _, c := range result.Conflicts {
			got[c.Type]++
		}
		for _, want := range []ConflictType{ConflictDuplicateHabitName, ConflictBlankHabitName, ConflictTargetOutOfRange, ConflictDuplicateSortOrder} {
			if got[want] != 1 {
				t.Errorf("expected one %s conflict, got %d", want, got[want])
			}
		}
		if !strings.Contains(result.FormatReport(), "Duplicate habit name") {
			t.Errorf("report missing duplicate name line: %s", result.FormatReport())
		}
	})
}

func TestValidateCompletions(t *testing.T) {
	v := &Validator{now: func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local) }}
	habits := []models.Habit{{ID: "a", Name: "Read", TargetPerWeek: 4}}

	result := v.ValidateCompletions(habits, []models.Completion{
		{HabitID: "a", Date: "2026-03-09"},
		{HabitID: "a", Date: "2026-03-10"},
		{HabitID: "ghost", Date: "2026-03-09"},
		{HabitID: "a", Date: "2026-13-01"},
		{HabitID: "a", Date: "2026-03-11"},
	})

	want := []ConflictType{ConflictOrphanCompletion, ConflictInvalidDate, ConflictFutureCompletion}
	if len(result.Conflicts) != len(want) {
		t.Fatalf("expected %d conflicts, got %d: %s", len(want), len(result.Conflicts), result.FormatReport())
	}
	for i, c := range result.Conflicts {
		if c.Type != want[i] {
			t.Errorf("conflict %d: expected %s, got %s", i, want[i], c.Type)
		}
	}
}

func TestFormatReportEmpty(t *testing.T) {
	var result ValidationResult
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected report: %q", result.FormatReport())
	}
}
