package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitkeep/internal/constants"
)

// All helpers work on calendar days in the device's local zone. Dates never pass
// through UTC, so 23:00 and 01:00 the next local morning are two different days.

// FormatDate returns the local calendar day of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(constants.DateFormat)
}

// Today returns now's calendar day as YYYY-MM-DD.
func Today(now time.Time) string {
	return FormatDate(now)
}

// ParseDate parses a YYYY-MM-DD string as midnight in the local zone.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", dateStr, err)
	}
	return t, nil
}

// ValidateDate checks if the string is a YYYY-MM-DD calendar day.
func ValidateDate(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// AddDays moves t by n calendar days, returning local midnight.
func AddDays(t time.Time, n int) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, time.Local)
}

// DaysBetween returns the number of calendar days from `from` to `to`.
// It is negative when `to` is earlier. DST shifts do not affect the result.
func DaysBetween(from, to time.Time) int {
	from, to = from.In(time.Local), to.In(time.Local)
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// MonthStart returns local midnight on the first day of t's month, moved by n months.
func MonthStart(t time.Time, n int) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.Local)
}

// DateWindow returns the n calendar days ending with end (inclusive), oldest first.
func DateWindow(end time.Time, n int) []string {
	days := make([]string, 0, n)
	for offset := n - 1; offset >= 0; offset-- {
		days = append(days, FormatDate(AddDays(end, -offset)))
	}
	return days
}

// ParseClock parses an HH:MM string into hour and minute.
func ParseClock(clock string) (int, int, error) {
	t, err := time.Parse(constants.TimeFormat, clock)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM): %w", clock, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, _, err := ParseClock(timeStr)
	return err == nil
}
