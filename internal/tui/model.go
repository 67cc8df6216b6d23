package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/habits"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/models"
	habitlist "github.com/julianstephens/habitkeep/internal/tui/components/habits"
)

// rowsMsg carries a fresh Today view from the service watch.
type rowsMsg []models.HabitWithHistory

type watchClosedMsg struct{}

type errMsg struct {
	err error
}

type statusMsg string

type historyMsg struct {
	history models.HabitWith30DayHistory
}

type monthsMsg struct {
	habit  models.Habit
	months []models.MonthCount
}

// HabitFormModel backs the add and edit forms.
type HabitFormModel struct {
	Name   string
	Target int
}

// ImportFormModel backs the import form.
type ImportFormModel struct {
	Path    string
	Confirm bool
}

type Model struct {
	svc    *habits.Service
	ctx    context.Context
	cancel context.CancelFunc
	rows   <-chan []models.HabitWithHistory

	state       constants.SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habitlist.Model

	form        *huh.Form
	habitForm   *HabitFormModel
	importForm  *ImportFormModel
	editingID   string
	deleting    models.Habit
	history     models.HabitWith30DayHistory
	months      []models.MonthCount
	monthsHabit models.Habit

	status   string
	err      error
	width    int
	height   int
	quitting bool
}

// NewModel builds the interactive model and subscribes to store changes.
// The first Today view arrives through the subscription.
func NewModel(svc *habits.Service) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		svc:         svc,
		ctx:         ctx,
		cancel:      cancel,
		rows:        svc.Watch(ctx),
		state:       constants.StateToday,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habitlist.New(nil, 0, 0),
	}
}

// Close stops the store subscription.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) Init() tea.Cmd {
	return waitForRows(m.rows)
}

func waitForRows(ch <-chan []models.HabitWithHistory) tea.Cmd {
	return func() tea.Msg {
		rows, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return rowsMsg(rows)
	}
}

// run executes a service call off the update loop. Refreshes arrive through
// the watch, so success produces only an optional status line.
func (m Model) run(status string, op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := op(ctx); err != nil {
			logger.Component("tui").Debug("operation failed", "error", err)
			return errMsg{err: err}
		}
		if status == "" {
			return nil
		}
		return statusMsg(status)
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateToday:
		hk := m.habitsModel.Keys()
		keys = append(keys, hk.Toggle, hk.Add, hk.Edit, hk.Delete)
	case constants.StateHistory, constants.StateMonths:
		keys = append(keys, m.keys.Back)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Quit, m.keys.Help, m.keys.Back}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == constants.StateToday {
		hk := m.habitsModel.Keys()
		actions = []key.Binding{
			hk.Toggle, hk.Add, hk.Edit, hk.Delete,
			hk.MoveUp, hk.MoveDown, hk.History, hk.Months, hk.Import,
		}
	}
	return [][]key.Binding{global, navigation, actions}
}
