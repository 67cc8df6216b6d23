package habits

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitkeep/internal/cli"
	"github.com/julianstephens/habitkeep/internal/models"
)

type AddHabitMsg struct{}

type ImportMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type EditHabitMsg struct {
	Habit models.Habit
}

type DeleteHabitMsg struct {
	Habit models.Habit
}

type MoveHabitMsg struct {
	ID string
	Up bool
}

type ShowHistoryMsg struct {
	Habit models.Habit
}

type ShowMonthsMsg struct {
	Habit models.Habit
}

type Item struct {
	Row models.HabitWithHistory
}

func (i Item) Title() string {
	if i.Row.IsCompletedToday {
		return "✓ " + i.Row.Habit.Name
	}
	return "○ " + i.Row.Habit.Name
}

func (i Item) Description() string {
	desc := cli.FormatWeek(i.Row.Last7Days) + "  " + cli.FormatTarget(i.Row)
	if i.Row.MetWeeklyTarget {
		desc += "  target met"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Row.Habit.Name }

type KeyMap struct {
	Toggle   key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	History  key.Binding
	Months   key.Binding
	Import   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x/space", "toggle today"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		History: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "30 days"),
		),
		Months: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "12 months"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(rows []models.HabitWithHistory, width, height int) Model {
	l := list.New(toItems(rows), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{
			keys.Toggle, keys.Add, keys.Edit, keys.Delete,
			keys.MoveUp, keys.MoveDown, keys.History, keys.Months, keys.Import,
		}
	}

	return Model{list: l, keys: keys}
}

func toItems(rows []models.HabitWithHistory) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = Item{Row: r}
	}
	return items
}

// SetRows replaces the list contents and keeps the cursor on the same habit
// when it is still present.
func (m *Model) SetRows(rows []models.HabitWithHistory) {
	selected := m.SelectedID()
	m.list.SetItems(toItems(rows))
	if selected == "" {
		return
	}
	for i, r := range rows {
		if r.Habit.ID == selected {
			m.list.Select(i)
			return
		}
	}
}

// Rows returns the rows currently shown, in display order.
func (m Model) Rows() []models.HabitWithHistory {
	items := m.list.Items()
	rows := make([]models.HabitWithHistory, 0, len(items))
	for _, it := range items {
		if i, ok := it.(Item); ok {
			rows = append(rows, i.Row)
		}
	}
	return rows
}

func (m Model) SelectedID() string {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Row.Habit.ID
	}
	return ""
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Import):
			return m, func() tea.Msg { return ImportMsg{} }
		}

		i, ok := m.list.SelectedItem().(Item)
		if ok {
			h := i.Row.Habit
			switch {
			case key.Matches(msg, m.keys.Toggle):
				return m, func() tea.Msg { return ToggleHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.Edit):
				return m, func() tea.Msg { return EditHabitMsg{Habit: h} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{Habit: h} }
			case key.Matches(msg, m.keys.MoveUp):
				return m, func() tea.Msg { return MoveHabitMsg{ID: h.ID, Up: true} }
			case key.Matches(msg, m.keys.MoveDown):
				return m, func() tea.Msg { return MoveHabitMsg{ID: h.ID} }
			case key.Matches(msg, m.keys.History):
				return m, func() tea.Msg { return ShowHistoryMsg{Habit: h} }
			case key.Matches(msg, m.keys.Months):
				return m, func() tea.Msg { return ShowMonthsMsg{Habit: h} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
