package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/utils"
)

// NormalizeName trims a habit name and rejects blank results.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.Validation("habit name must not be blank")
	}
	return trimmed, nil
}

// ClampTarget forces a weekly target into [1, 7].
func ClampTarget(target int) int {
	if target < constants.MinTargetPerWeek {
		return constants.MinTargetPerWeek
	}
	if target > constants.MaxTargetPerWeek {
		return constants.MaxTargetPerWeek
	}
	return target
}

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictBlankHabitName     ConflictType = "blank_habit_name"
	ConflictTargetOutOfRange   ConflictType = "target_out_of_range"
	ConflictDuplicateSortOrder ConflictType = "duplicate_sort_order"
	ConflictOrphanCompletion   ConflictType = "orphan_completion"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictFutureCompletion   ConflictType = "future_completion"
)

// Conflict represents a detected problem in stored habits or completions
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Habit names involved
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator audits a database snapshot for rows the write paths should never produce.
// Rows written by older versions or edited by hand are the usual source.
type Validator struct {
	now func() time.Time
}

// New creates a new Validator
func New() *Validator {
	return &Validator{now: time.Now}
}

// ValidateHabits checks habit rows for conflicts
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	nameIDs := make(map[string][]string)
	var names []string
	for _, h := range habits {
		name := strings.TrimSpace(h.Name)
		if name == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictBlankHabitName,
				Description: fmt.Sprintf("Habit %s has a blank name", h.ID),
				HabitIDs:    []string{h.ID},
			})
			continue
		}
		key := strings.ToLower(name)
		if _, seen := nameIDs[key]; !seen {
			names = append(names, key)
		}
		nameIDs[key] = append(nameIDs[key], h.ID)
	}

	for _, key := range names {
		if ids := nameIDs[key]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: \"%s\" (IDs: %v)", key, ids),
				Items:       []string{key},
				HabitIDs:    ids,
			})
		}
	}

	for _, h := range habits {
		if h.TargetPerWeek < constants.MinTargetPerWeek || h.TargetPerWeek > constants.MaxTargetPerWeek {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictTargetOutOfRange,
				Description: fmt.Sprintf("Habit \"%s\" has weekly target %d outside %d-%d", h.Name, h.TargetPerWeek, constants.MinTargetPerWeek, constants.MaxTargetPerWeek),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}
	}

	// Equal sort orders are legal (created_at breaks ties) but mean the order was
	// never set explicitly, usually after a migration.
	byOrder := make(map[int][]models.Habit)
	for _, h := range habits {
		byOrder[h.SortOrder] = append(byOrder[h.SortOrder], h)
	}
	orders := make([]int, 0, len(byOrder))
	for order := range byOrder {
		orders = append(orders, order)
	}
	sort.Ints(orders)
	for _, order := range orders {
		group := byOrder[order]
		if len(group) < 2 {
			continue
		}
		items := make([]string, len(group))
		ids := make([]string, len(group))
		for i, h := range group {
			items[i] = h.Name
			ids[i] = h.ID
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateSortOrder,
			Description: fmt.Sprintf("Habits share sort order %d: %s", order, strings.Join(items, ", ")),
			Items:       items,
			HabitIDs:    ids,
		})
	}

	return result
}

// ValidateCompletions checks completion rows against the habit set
func (v *Validator) ValidateCompletions(habits []models.Habit, completions []models.Completion) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	known := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		known[h.ID] = struct{}{}
	}
	today := utils.Today(v.now())

	for _, c := range completions {
		if _, ok := known[c.HabitID]; !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanCompletion,
				Description: fmt.Sprintf("Completion on %s references unknown habit %s", c.Date, c.HabitID),
				Date:        c.Date,
				HabitIDs:    []string{c.HabitID},
			})
			continue
		}
		if !utils.ValidateDate(c.Date) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Completion for habit %s has invalid date: %s", c.HabitID, c.Date),
				Date:        c.Date,
				HabitIDs:    []string{c.HabitID},
			})
			continue
		}
		if c.Date > today {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictFutureCompletion,
				Description: fmt.Sprintf("Completion for habit %s is in the future: %s", c.HabitID, c.Date),
				Date:        c.Date,
				HabitIDs:    []string{c.HabitID},
			})
		}
	}

	return result
}

// ValidateSnapshot runs every check over a snapshot
func (v *Validator) ValidateSnapshot(snap models.Snapshot) ValidationResult {
	result := v.ValidateHabits(snap.Habits)
	result.Conflicts = append(result.Conflicts, v.ValidateCompletions(snap.Habits, snap.Completions).Conflicts...)
	return result
}
