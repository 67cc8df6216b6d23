package stats

import (
	"testing"
	"time"

	"github.com/julianstephens/habitkeep/internal/models"
)

func withLocal(t *testing.T, name string) {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("zone %s unavailable: %v", name, err)
	}
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		t.Fatalf("bad date %s: %v", s, err)
	}
	return d.Add(15 * time.Hour)
}

func completions(habitID string, dates ...string) []models.Completion {
	out := make([]models.Completion, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.Completion{HabitID: habitID, Date: d})
	}
	return out
}

func TestLast7Days(t *testing.T) {
	withLocal(t, "UTC")
	today := day(t, "2026-03-10")
	ix := NewIndex(completions("h1", "2026-03-04", "2026-03-06", "2026-03-10", "2026-03-03", "2026-03-11"))

	got := Last7Days(ix, "h1", today)
	want := []bool{true, false, true, false, false, false, true}
	if len(got) != len(want) {
		t.Fatalf("expected %d flags, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flag %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestMetWeeklyTarget(t *testing.T) {
	tests := []struct {
		name   string
		flags  []bool
		target int
		want   bool
	}{
		{"below target", []bool{true, true, true, false, false, false, false}, 4, false},
		{"exactly target", []bool{true, true, true, true, false, false, false}, 4, true},
		{"above target", []bool{true, true, true, true, true, true, true}, 4, true},
		{"target one", []bool{false, false, false, false, false, false, true}, 1, true},
		{"empty week", make([]bool, 7), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MetWeeklyTarget(tt.flags, tt.target); got != tt.want {
				t.Errorf("MetWeeklyTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Four completions spread across the previous calendar week and this one still
// count: the window trails today rather than starting on Monday.
func TestWeeklyTargetRollsAcrossWeekBoundary(t *testing.T) {
	withLocal(t, "UTC")
	today := day(t, "2026-03-10") // Tuesday
	ix := NewIndex(completions("h1", "2026-03-05", "2026-03-07", "2026-03-09", "2026-03-10"))

	if !MetWeeklyTarget(Last7Days(ix, "h1", today), 4) {
		t.Error("expected target met for trailing window")
	}
	if MetWeeklyTarget(Last7Days(ix, "h1", day(t, "2026-03-12")), 4) {
		t.Error("expected target missed once 2026-03-05 leaves the window")
	}
}

func TestLast30Days(t *testing.T) {
	withLocal(t, "UTC")
	today := day(t, "2026-03-10")
	ix := NewIndex(completions("h1", "2026-02-09", "2026-02-08", "2026-03-01"))

	got := Last30Days(ix, "h1", today)
	if len(got) != 30 {
		t.Fatalf("expected 30 days, got %d", len(got))
	}
	if got[0].Date != "2026-02-09" || !got[0].Complete {
		t.Errorf("expected first day 2026-02-09 complete, got %+v", got[0])
	}
	if got[29].Date != "2026-03-10" || got[29].Complete {
		t.Errorf("expected last day 2026-03-10 incomplete, got %+v", got[29])
	}
	done := 0
	for _, d := range got {
		if d.Complete {
			done++
		}
	}
	if done != 2 {
		t.Errorf("expected 2 complete days, got %d", done)
	}
}

func TestTwelveMonths(t *testing.T) {
	withLocal(t, "UTC")
	today := day(t, "2026-03-10")
	records := append(
		completions("h1", "2025-03-31", "2025-04-01", "2025-04-15", "2026-01-01", "2026-03-10", "2026-03-20"),
		completions("h2", "2026-03-01")...,
	)

	got := TwelveMonths(records, "h1", today)
	if len(got) != 12 {
		t.Fatalf("expected 12 months, got %d", len(got))
	}
	if got[0].Month.String() != "2025-04" {
		t.Errorf("expected first month 2025-04, got %s", got[0].Month)
	}
	if got[11].Month.String() != "2026-03" {
		t.Errorf("expected last month 2026-03, got %s", got[11].Month)
	}

	want := map[string]int{"2025-04": 2, "2026-01": 1, "2026-03": 1}
	for _, mc := range got {
		if mc.Count != want[mc.Month.String()] {
			t.Errorf("month %s: expected %d, got %d", mc.Month, want[mc.Month.String()], mc.Count)
		}
	}
}

func TestYearRange(t *testing.T) {
	withLocal(t, "UTC")
	start, end := YearRange(day(t, "2026-01-31"))
	if start != "2025-02-01" || end != "2026-01-31" {
		t.Errorf("unexpected range %s..%s", start, end)
	}
}

func TestDaysSince(t *testing.T) {
	withLocal(t, "America/New_York")
	today := day(t, "2026-03-10")
	created := time.Date(2026, 3, 1, 23, 30, 0, 0, time.Local)
	habit := models.Habit{ID: "h1", CreatedAt: created.UnixMilli()}

	tests := []struct {
		name string
		last string
		want int
	}{
		{"completed today", "2026-03-10", 0},
		{"completed yesterday", "2026-03-09", 1},
		{"across DST change", "2026-03-07", 3},
		{"never completed counts from creation day", "", 9},
		{"future completion clamps to zero", "2026-03-12", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysSince(habit, tt.last, today)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DaysSince() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := DaysSince(habit, "not-a-date", today); err == nil {
		t.Error("expected error for malformed last date")
	}
}

func TestCompletedWithin(t *testing.T) {
	withLocal(t, "UTC")
	today := day(t, "2026-03-10")
	ix := NewIndex(completions("h1", "2026-03-08"))

	if !CompletedWithin(ix, "h1", today, 3) {
		t.Error("expected completion two days ago to be inside the 3-day window")
	}
	if CompletedWithin(ix, "h1", day(t, "2026-03-11"), 3) {
		t.Error("expected completion three days ago to be outside the 3-day window")
	}
}

func TestHistoryRowsPreservesOrder(t *testing.T) {
	withLocal(t, "UTC")
	today := day(t, "2026-03-10")
	snap := models.Snapshot{
		Habits: []models.Habit{
			{ID: "b", Name: "Read", TargetPerWeek: 1, SortOrder: 0},
			{ID: "a", Name: "Run", TargetPerWeek: 2, SortOrder: 1},
		},
		Completions: completions("b", "2026-03-10"),
	}

	rows := HistoryRows(snap, today)
	if len(rows) != 2 || rows[0].Habit.ID != "b" || rows[1].Habit.ID != "a" {
		t.Fatalf("unexpected row order: %+v", rows)
	}
	if !rows[0].IsCompletedToday || !rows[0].MetWeeklyTarget {
		t.Errorf("expected first row completed today with target met, got %+v", rows[0])
	}
	if rows[1].IsCompletedToday || rows[1].MetWeeklyTarget {
		t.Errorf("expected second row untouched, got %+v", rows[1])
	}
	if rows[0].CompletedCount() != 1 {
		t.Errorf("expected count 1, got %d", rows[0].CompletedCount())
	}
}
