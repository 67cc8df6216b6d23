package storage

import (
	"context"

	"github.com/julianstephens/habitkeep/internal/models"
)

// Provider is the habit store. Every consumer (CLI, TUI, widget, scheduled jobs)
// receives the same explicitly constructed Provider from the entry point.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	// AddHabit trims the name, clamps the target and appends the habit after the
	// current maximum sort order. Blank names fail with errors.ErrValidation.
	AddHabit(ctx context.Context, name string, targetPerWeek int) (string, error)
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	// GetAllHabits returns habits by sort_order, then created_at.
	GetAllHabits(ctx context.Context) ([]models.Habit, error)
	// UpdateHabit silently ignores blank names and fails with errors.ErrNotFound
	// for unknown ids.
	UpdateHabit(ctx context.Context, id, name string, targetPerWeek int) error
	DeleteHabit(ctx context.Context, id string) error
	// ReplaceAllHabits wipes every habit and completion and inserts names in order.
	// It is all-or-nothing.
	ReplaceAllHabits(ctx context.Context, names []string) error
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error

	// Completions
	// ToggleCompletion flips membership of (habitID, date) and returns the new state.
	ToggleCompletion(ctx context.Context, habitID, date string) (bool, error)
	SetCompletion(ctx context.Context, habitID, date string, complete bool) error
	IsComplete(ctx context.Context, habitID, date string) (bool, error)
	GetCompletionsForDate(ctx context.Context, date string) ([]models.Completion, error)
	// Range bounds are inclusive on both ends.
	GetCompletionsInRange(ctx context.Context, start, end string) ([]models.Completion, error)
	GetCompletionsForHabitInRange(ctx context.Context, habitID, start, end string) ([]models.Completion, error)
	// GetLastCompletionDates omits habits that were never completed.
	GetLastCompletionDates(ctx context.Context) ([]models.LastCompletion, error)

	// ReadSnapshot returns habits, completions in [start, end] and last completion
	// dates from a single read transaction.
	ReadSnapshot(ctx context.Context, start, end string) (models.Snapshot, error)

	// Subscribe registers for one Event per committed mutation.
	Subscribe() *Subscription

	// Utils
	GetConfigPath() string
}
