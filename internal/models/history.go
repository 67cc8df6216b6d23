package models

import (
	"fmt"
	"time"
)

// HabitWithHistory is the per-habit row shared by the presentation layer and the widget.
type HabitWithHistory struct {
	Habit            Habit  `json:"habit"`
	IsCompletedToday bool   `json:"is_completed_today"`
	Last7Days        []bool `json:"last_7_days"` // oldest first, today last
	MetWeeklyTarget  bool   `json:"met_weekly_target"`
}

// CompletedCount returns how many of the last seven days are complete.
func (h HabitWithHistory) CompletedCount() int {
	n := 0
	for _, done := range h.Last7Days {
		if done {
			n++
		}
	}
	return n
}

// DayCompletion pairs a calendar day with its completion state.
type DayCompletion struct {
	Date     string `json:"date"`
	Complete bool   `json:"complete"`
}

// HabitWith30DayHistory is a habit with its last thirty days, oldest first.
type HabitWith30DayHistory struct {
	Habit Habit           `json:"habit"`
	Days  []DayCompletion `json:"days"`
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MonthCount is the number of completions inside one calendar month.
type MonthCount struct {
	Month YearMonth `json:"month"`
	Count int       `json:"count"`
}
