package habits

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitkeep/internal/models"
)

func row(id, name string, today bool, met bool) models.HabitWithHistory {
	return models.HabitWithHistory{
		Habit:            models.Habit{ID: id, Name: name, TargetPerWeek: 2},
		IsCompletedToday: today,
		Last7Days:        []bool{false, false, false, false, false, today, today},
		MetWeeklyTarget:  met,
	}
}

func TestItem(t *testing.T) {
	tests := []struct {
		name      string
		row       models.HabitWithHistory
		wantTitle string
		wantDesc  string
	}{
		{"pending", row("1", "Walk", false, false), "○ Walk", "□□□□□□□  0/2"},
		{"done and met", row("1", "Walk", true, true), "✓ Walk", "□□□□□■■  2/2 ✓  target met"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := Item{Row: tt.row}
			if got := i.Title(); got != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
			}
			if got := i.Description(); got != tt.wantDesc {
				t.Errorf("Description() = %q, want %q", got, tt.wantDesc)
			}
		})
	}
}

func TestSetRowsKeepsSelection(t *testing.T) {
	m := New([]models.HabitWithHistory{row("a", "A", false, false), row("b", "B", false, false)}, 40, 20)
	m.list.Select(1)

	m.SetRows([]models.HabitWithHistory{row("b", "B", true, false), row("a", "A", false, false), row("c", "C", false, false)})
	if got := m.SelectedID(); got != "b" {
		t.Errorf("SelectedID() = %q, want b", got)
	}
	if n := len(m.Rows()); n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}
}

func TestUpdateEmitsIntents(t *testing.T) {
	m := New([]models.HabitWithHistory{row("a", "A", false, false)}, 40, 20)

	tests := []struct {
		name string
		key  tea.KeyMsg
		want tea.Msg
	}{
		{"toggle", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, ToggleHabitMsg{ID: "a"}},
		{"add", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, AddHabitMsg{}},
		{"move up", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("K")}, MoveHabitMsg{ID: "a", Up: true}},
		{"move down", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("J")}, MoveHabitMsg{ID: "a"}},
		{"import", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("i")}, ImportMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := m.Update(tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if got := cmd(); got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	empty := New(nil, 40, 20)
	if _, cmd := empty.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		if _, ok := cmd().(ToggleHabitMsg); ok {
			t.Error("toggle on an empty list should not emit an intent")
		}
	}
}
