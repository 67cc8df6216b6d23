// Package widget renders the compact home-screen view: habits paired two per
// row, each with today's check, the previous six days and a target-met mark.
package widget

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/models"
)

// Source is the part of the habit service the widget reads from and writes to.
type Source interface {
	Today(ctx context.Context) ([]models.HabitWithHistory, error)
	ToggleToday(ctx context.Context, habitID string) (bool, error)
}

type Cell struct {
	ID        string
	Name      string
	DoneToday bool
	// Dots holds the six days before today, oldest first.
	Dots      []bool
	TargetMet bool
}

type Row []Cell

// habitLock is dropped from Widget.locks once no caller holds or waits on it.
type habitLock struct {
	sync.Mutex
	refs int
}

type Widget struct {
	src Source
	log *log.Logger

	mu    sync.Mutex
	locks map[string]*habitLock
}

func New(src Source) *Widget {
	return &Widget{
		src:   src,
		log:   logger.Component("widget"),
		locks: make(map[string]*habitLock),
	}
}

// Load reads every habit eagerly. A failed read renders as an empty widget.
func (w *Widget) Load(ctx context.Context) []Row {
	rows, err := w.src.Today(ctx)
	if err != nil {
		w.log.Error("widget data load failed", "error", err)
		return nil
	}
	return Pair(Cells(rows))
}

// Toggle flips today's completion for habitID and returns the refreshed rows.
// Taps on the same habit are serialized so each refresh observes its own write.
func (w *Widget) Toggle(ctx context.Context, habitID string) ([]Row, error) {
	lock := w.acquire(habitID)
	defer w.release(habitID, lock)

	done, err := w.src.ToggleToday(ctx, habitID)
	if err != nil {
		return nil, err
	}
	w.log.Debug("habit toggled", "habit_id", habitID, "done", done)
	return w.Load(ctx), nil
}

func (w *Widget) acquire(habitID string) *habitLock {
	w.mu.Lock()
	lock, ok := w.locks[habitID]
	if !ok {
		lock = &habitLock{}
		w.locks[habitID] = lock
	}
	lock.refs++
	w.mu.Unlock()

	lock.Lock()
	return lock
}

func (w *Widget) release(habitID string, lock *habitLock) {
	lock.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(w.locks, habitID)
	}
}

func Cells(rows []models.HabitWithHistory) []Cell {
	cells := make([]Cell, len(rows))
	for i, r := range rows {
		dots := r.Last7Days
		if n := len(dots); n > 0 {
			dots = dots[:n-1]
		}
		if n := len(dots); n > constants.WidgetHistoryDots {
			dots = dots[n-constants.WidgetHistoryDots:]
		}
		cells[i] = Cell{
			ID:        r.Habit.ID,
			Name:      r.Habit.Name,
			DoneToday: r.IsCompletedToday,
			Dots:      append([]bool(nil), dots...),
			TargetMet: r.MetWeeklyTarget,
		}
	}
	return cells
}

// Pair groups cells into rows of constants.WidgetHabitsPerRow, keeping order.
func Pair(cells []Cell) []Row {
	var rows []Row
	for start := 0; start < len(cells); start += constants.WidgetHabitsPerRow {
		end := min(start+constants.WidgetHabitsPerRow, len(cells))
		rows = append(rows, Row(cells[start:end]))
	}
	return rows
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			MarginBottom(1)

	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	doneCellStyle = cellStyle.
			BorderForeground(lipgloss.Color("42"))

	dotOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dotOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Italic(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Render draws rows as a grid of cells, each cellWidth columns wide.
func Render(rows []Row, cellWidth int) string {
	title := titleStyle.Render("Habits")
	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No habits yet"))
	}

	lines := []string{title}
	for _, row := range rows {
		rendered := make([]string, len(row))
		for i, c := range row {
			rendered[i] = renderCell(c, cellWidth)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCell(c Cell, width int) string {
	check := "○"
	style := cellStyle
	if c.DoneToday {
		check = "✓"
		style = doneCellStyle
	}

	var dots strings.Builder
	for _, done := range c.Dots {
		if done {
			dots.WriteString(dotOnStyle.Render("■"))
		} else {
			dots.WriteString(dotOffStyle.Render("□"))
		}
	}

	content := []string{check + " " + c.Name, dots.String()}
	if c.TargetMet {
		content = append(content, targetStyle.Render("Target met"))
	}
	return style.Width(width).Render(strings.Join(content, "\n"))
}
