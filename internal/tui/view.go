package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitkeep/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateToday:
		content = m.habitsModel.View()
	case constants.StateHistory:
		content = m.viewHistory()
	case constants.StateMonths:
		content = m.viewMonths()
	case constants.StateAddHabit, constants.StateEditHabit, constants.StateImport:
		content = m.form.View()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
	return docStyle.Render(ui)
}

func (m Model) viewHeader() string {
	rows := m.habitsModel.Rows()
	done := 0
	for _, r := range rows {
		if r.IsCompletedToday {
			done++
		}
	}
	title := titleStyle.Render("habitkeep")
	summary := subtleStyle.Render(fmt.Sprintf("%s  %d/%d done today", m.svc.TodayDate(), done, len(rows)))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", summary) + "\n"
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewHistory() string {
	var b strings.Builder
	done := 0
	fmt.Fprintf(&b, "%s  last %d days\n\n", m.history.Habit.Name, constants.MonthWindowDays)
	for i, d := range m.history.Days {
		if d.Complete {
			done++
			b.WriteString(doneStyle.Render("■"))
		} else {
			b.WriteString(missedStyle.Render("□"))
		}
		if (i+1)%constants.WeekWindowDays == 0 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "\n\nCompleted: %d/%d\n", done, len(m.history.Days))
	return b.String()
}

func (m Model) viewMonths() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  last %d months\n\n", m.monthsHabit.Name, constants.YearWindowMonths)
	for _, mc := range m.months {
		fmt.Fprintf(&b, "%s %3d %s\n", mc.Month, mc.Count, doneStyle.Render(strings.Repeat("█", mc.Count)))
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	text := fmt.Sprintf("Delete %q and all of its history?\n\n(y) Yes   (n) No", m.deleting.Name)
	return confirmStyle.Render(text)
}
