package models

import "time"

// Habit represents a recurring practice with a weekly completion target
type Habit struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetPerWeek int    `json:"target_per_week"`
	CreatedAt     int64  `json:"created_at"` // epoch milliseconds
	SortOrder     int    `json:"sort_order"`
}

// CreatedTime returns CreatedAt as a time in the local zone.
func (h Habit) CreatedTime() time.Time {
	return time.UnixMilli(h.CreatedAt).In(time.Local)
}

// Completion records that a habit was done on a calendar day.
// Presence means done; there is no explicit "not done" record.
type Completion struct {
	HabitID string `json:"habit_id"`
	Date    string `json:"date"` // YYYY-MM-DD format
}

// LastCompletion is the most recent completion date of a habit.
type LastCompletion struct {
	HabitID string `json:"habit_id"`
	Date    string `json:"date"`
}

// Snapshot is a consistent read of habits and completions taken in a single transaction.
type Snapshot struct {
	Habits          []Habit          `json:"habits"`
	Completions     []Completion     `json:"completions"` // only those inside the requested range
	LastCompletions []LastCompletion `json:"last_completions"`
	Start           string           `json:"start"`
	End             string           `json:"end"`
}
