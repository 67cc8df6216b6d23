package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitkeep/internal/config"
	"github.com/julianstephens/habitkeep/internal/constants"
	habitlist "github.com/julianstephens/habitkeep/internal/tui/components/habits"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		m.help.Width = msg.Width - h
		m.habitsModel.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case rowsMsg:
		m.habitsModel.SetRows(msg)
		return m, waitForRows(m.rows)

	case watchClosedMsg:
		return m, nil

	case errMsg:
		m.err = msg.err
		m.status = ""
		return m, nil

	case statusMsg:
		m.status = string(msg)
		m.err = nil
		return m, nil

	case historyMsg:
		m.history = msg.history
		m.state = constants.StateHistory
		return m, nil

	case monthsMsg:
		m.monthsHabit = msg.habit
		m.months = msg.months
		m.state = constants.StateMonths
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateEditHabit:
		return m.updateHabitForm(msg)
	case constants.StateImport:
		return m.updateImportForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateHistory, constants.StateMonths:
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m.quit()
			case key.Matches(msg, m.keys.Back):
				m.state = constants.StateToday
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
			}
		}
		return m, nil
	}

	if handled, cmd := m.handleHabitMessages(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.err = nil
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

// handleHabitMessages turns list intents into service calls.
func (m *Model) handleHabitMessages(msg tea.Msg) (bool, tea.Cmd) {
	svc := m.svc
	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.editingID = ""
		m.habitForm = &HabitFormModel{Target: constants.DefaultTargetPerWeek}
		m.form = NewHabitForm(m.habitForm, "New habit")
		m.state = constants.StateAddHabit
		return true, m.form.Init()

	case habitlist.EditHabitMsg:
		m.editingID = msg.Habit.ID
		m.habitForm = &HabitFormModel{Name: msg.Habit.Name, Target: msg.Habit.TargetPerWeek}
		m.form = NewHabitForm(m.habitForm, "Habit name")
		m.state = constants.StateEditHabit
		return true, m.form.Init()

	case habitlist.ImportMsg:
		m.importForm = &ImportFormModel{}
		m.form = NewImportForm(m.importForm)
		m.state = constants.StateImport
		return true, m.form.Init()

	case habitlist.DeleteHabitMsg:
		m.deleting = msg.Habit
		m.state = constants.StateConfirmDelete
		return true, nil

	case habitlist.ToggleHabitMsg:
		return true, m.run("", func(ctx context.Context) error {
			_, err := svc.ToggleToday(ctx, msg.ID)
			return err
		})

	case habitlist.MoveHabitMsg:
		return true, m.run("", func(ctx context.Context) error {
			if msg.Up {
				return svc.MoveUp(ctx, msg.ID)
			}
			return svc.MoveDown(ctx, msg.ID)
		})

	case habitlist.ShowHistoryMsg:
		ctx := m.ctx
		return true, func() tea.Msg {
			h, err := svc.ThirtyDays(ctx, msg.Habit.ID)
			if err != nil {
				return errMsg{err: err}
			}
			return historyMsg{history: h}
		}

	case habitlist.ShowMonthsMsg:
		ctx := m.ctx
		return true, func() tea.Msg {
			months, err := svc.TwelveMonths(ctx, msg.Habit.ID)
			if err != nil {
				return errMsg{err: err}
			}
			return monthsMsg{habit: msg.Habit, months: months}
		}
	}
	return false, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return m, cmd
}

func (m Model) updateHabitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateToday
		return m, nil
	}

	m, cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		return m, tea.Batch(cmd, m.saveHabitForm())
	case huh.StateAborted:
		m.state = constants.StateToday
	}
	return m, cmd
}

// saveHabitForm persists the add or edit form and returns to the list.
func (m *Model) saveHabitForm() tea.Cmd {
	svc := m.svc
	name := strings.TrimSpace(m.habitForm.Name)
	target := m.habitForm.Target
	id := m.editingID
	m.state = constants.StateToday

	if id == "" {
		return m.run(fmt.Sprintf("Added %q", name), func(ctx context.Context) error {
			_, err := svc.Add(ctx, name, target)
			return err
		})
	}
	return m.run(fmt.Sprintf("Updated %q", name), func(ctx context.Context) error {
		return svc.Update(ctx, id, name, target)
	})
}

func (m Model) updateImportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateToday
		return m, nil
	}

	m, cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		m.state = constants.StateToday
		if !m.importForm.Confirm {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.importFile(strings.TrimSpace(m.importForm.Path)))
	case huh.StateAborted:
		m.state = constants.StateToday
	}
	return m, cmd
}

func (m Model) importFile(path string) tea.Cmd {
	svc := m.svc
	ctx := m.ctx
	return func() tea.Msg {
		expanded, err := config.ExpandHome(path)
		if err != nil {
			return errMsg{err: err}
		}
		f, err := os.Open(expanded)
		if err != nil {
			return errMsg{err: err}
		}
		defer f.Close()
		n, err := svc.Import(ctx, f)
		if err != nil {
			return errMsg{err: err}
		}
		return statusMsg(fmt.Sprintf("Imported %d habits", n))
	}
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		h := m.deleting
		svc := m.svc
		m.state = constants.StateToday
		return m, m.run(fmt.Sprintf("Deleted %q", h.Name), func(ctx context.Context) error {
			return svc.Delete(ctx, h.ID)
		})
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = constants.StateToday
	}
	return m, nil
}
