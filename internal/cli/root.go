package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/julianstephens/habitkeep/internal/backup"
	"github.com/julianstephens/habitkeep/internal/config"
	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/habits"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/notifier"
	"github.com/julianstephens/habitkeep/internal/storage"
	"github.com/julianstephens/habitkeep/internal/storage/sqlite"
	"github.com/julianstephens/habitkeep/internal/summary"
	"github.com/julianstephens/habitkeep/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Store    storage.Provider
	Config   *config.Config
	Service  *habits.Service
	Summary  *summary.Generator
	Notifier notifier.Sender
	Out      io.Writer
}

// NewContext wires the services every command shares around one store.
func NewContext(store storage.Provider, cfg *config.Config, sender notifier.Sender) *Context {
	return &Context{
		Store:    store,
		Config:   cfg,
		Service:  habits.New(store),
		Summary:  summary.New(store),
		Notifier: sender,
		Out:      os.Stdout,
	}
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Print(args ...interface{}) {
	fmt.Fprint(c.Out, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// ResolveDate returns today for an empty value and otherwise validates YYYY-MM-DD.
func (c *Context) ResolveDate(date string) (string, error) {
	if date == "" {
		return c.Service.TodayDate(), nil
	}
	if !utils.ValidateDate(date) {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
	}
	return date, nil
}

// FormatWeek renders a seven-day history as ■/□, oldest first.
func FormatWeek(days []bool) string {
	var b strings.Builder
	for _, done := range days {
		if done {
			b.WriteString("■")
		} else {
			b.WriteString("□")
		}
	}
	return b.String()
}

// FormatTarget renders "done/target" with a marker when the target is met.
func FormatTarget(row models.HabitWithHistory) string {
	s := strconv.Itoa(row.CompletedCount()) + "/" + strconv.Itoa(row.Habit.TargetPerWeek)
	if row.MetWeeklyTarget {
		s += " ✓"
	}
	return s
}

// Backups returns the backup manager for a SQLite store, or nil when the data
// lives in PostgreSQL.
func (c *Context) Backups() *backup.Manager {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil
	}
	return backup.NewManager(c.Store.GetConfigPath())
}

// DefaultTarget is used when a command is not given --target.
const DefaultTarget = constants.DefaultTargetPerWeek
