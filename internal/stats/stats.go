// Package stats turns raw completion records into the windows and targets shown to
// the user. Every function is pure: callers pass a snapshot and "today", nothing is
// cached and nothing is read from the store here.
package stats

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/utils"
)

// Index is a set-membership view over completions: habit id -> date -> present.
type Index map[string]map[string]struct{}

// NewIndex builds an Index from completion records.
func NewIndex(completions []models.Completion) Index {
	ix := make(Index)
	for _, c := range completions {
		days, ok := ix[c.HabitID]
		if !ok {
			days = make(map[string]struct{})
			ix[c.HabitID] = days
		}
		days[c.Date] = struct{}{}
	}
	return ix
}

// Has reports whether habitID was completed on date.
func (ix Index) Has(habitID, date string) bool {
	_, ok := ix[habitID][date]
	return ok
}

// Window returns the n days ending today, oldest first, each paired with its date.
func Window(ix Index, habitID string, today time.Time, n int) []models.DayCompletion {
	dates := utils.DateWindow(today, n)
	out := make([]models.DayCompletion, len(dates))
	for i, d := range dates {
		out[i] = models.DayCompletion{Date: d, Complete: ix.Has(habitID, d)}
	}
	return out
}

// Last7Days returns completion flags for [today-6 .. today], oldest first.
func Last7Days(ix Index, habitID string, today time.Time) []bool {
	window := Window(ix, habitID, today, constants.WeekWindowDays)
	flags := make([]bool, len(window))
	for i, d := range window {
		flags[i] = d.Complete
	}
	return flags
}

// Last30Days returns [today-29 .. today], oldest first.
func Last30Days(ix Index, habitID string, today time.Time) []models.DayCompletion {
	return Window(ix, habitID, today, constants.MonthWindowDays)
}

// MetWeeklyTarget reports whether the trailing seven-day count reaches target.
// The window always ends today; it is not a Monday-to-Sunday week.
func MetWeeklyTarget(last7 []bool, target int) bool {
	count := 0
	for _, done := range last7 {
		if done {
			count++
		}
	}
	return count >= target
}

// CompletedWithin reports whether habitID has a completion in the trailing `days`
// days ending today.
func CompletedWithin(ix Index, habitID string, today time.Time, days int) bool {
	for _, d := range utils.DateWindow(today, days) {
		if ix.Has(habitID, d) {
			return true
		}
	}
	return false
}

// WeekRange returns the inclusive date bounds of the trailing seven-day window.
func WeekRange(today time.Time) (string, string) {
	return utils.FormatDate(utils.AddDays(today, -(constants.WeekWindowDays - 1))), utils.FormatDate(today)
}

// MonthRange returns the inclusive date bounds of the trailing thirty-day window.
func MonthRange(today time.Time) (string, string) {
	return utils.FormatDate(utils.AddDays(today, -(constants.MonthWindowDays - 1))), utils.FormatDate(today)
}

// YearRange returns the bounds of the twelve calendar months ending with today's month:
// the first of the month eleven months back, through today.
func YearRange(today time.Time) (string, string) {
	return utils.FormatDate(utils.MonthStart(today, -(constants.YearWindowMonths - 1))), utils.FormatDate(today)
}

// TwelveMonths counts habitID's completions per calendar month for the twelve months
// ending with today's month, oldest first. Empty months report zero.
func TwelveMonths(completions []models.Completion, habitID string, today time.Time) []models.MonthCount {
	start, end := YearRange(today)

	counts := make(map[string]int)
	for _, c := range completions {
		if c.HabitID != habitID || c.Date < start || c.Date > end || len(c.Date) < 7 {
			continue
		}
		counts[c.Date[:7]]++
	}

	out := make([]models.MonthCount, 0, constants.YearWindowMonths)
	for offset := constants.YearWindowMonths - 1; offset >= 0; offset-- {
		m := utils.MonthStart(today, -offset)
		ym := models.YearMonth{Year: m.Year(), Month: m.Month()}
		out = append(out, models.MonthCount{Month: ym, Count: counts[ym.String()]})
	}
	return out
}

// LastCompletionMap indexes last-completion rows by habit id.
func LastCompletionMap(rows []models.LastCompletion) map[string]string {
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.HabitID] = r.Date
	}
	return out
}

// DaysSince returns the calendar days from the habit's last completion to today.
// Without a completion it counts from the local day the habit was created.
// A last date in the future (clock skew) yields zero.
func DaysSince(habit models.Habit, lastDate string, today time.Time) (int, error) {
	var from time.Time
	if lastDate != "" {
		parsed, err := utils.ParseDate(lastDate)
		if err != nil {
			return 0, fmt.Errorf("habit %s: %w", habit.ID, err)
		}
		from = parsed
	} else {
		from = habit.CreatedTime()
	}

	days := utils.DaysBetween(from, today)
	if days < 0 {
		days = 0
	}
	return days, nil
}

// HistoryRows builds the presentation/widget read shape for every habit in the
// snapshot, preserving the snapshot's habit order.
func HistoryRows(snap models.Snapshot, today time.Time) []models.HabitWithHistory {
	ix := NewIndex(snap.Completions)
	todayStr := utils.FormatDate(today)

	rows := make([]models.HabitWithHistory, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		last7 := Last7Days(ix, h.ID, today)
		rows = append(rows, models.HabitWithHistory{
			Habit:            h,
			IsCompletedToday: ix.Has(h.ID, todayStr),
			Last7Days:        last7,
			MetWeeklyTarget:  MetWeeklyTarget(last7, h.TargetPerWeek),
		})
	}
	return rows
}

// ThirtyDayRows builds the thirty-day history for every habit in the snapshot.
func ThirtyDayRows(snap models.Snapshot, today time.Time) []models.HabitWith30DayHistory {
	ix := NewIndex(snap.Completions)
	rows := make([]models.HabitWith30DayHistory, 0, len(snap.Habits))
	for _, h := range snap.Habits {
		rows = append(rows, models.HabitWith30DayHistory{
			Habit: h,
			Days:  Last30Days(ix, h.ID, today),
		})
	}
	return rows
}
