// Package summary builds the morning reminder and evening summary texts.
// Both jobs only read the store and either produce a complete message or none.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/stats"
	"github.com/julianstephens/habitkeep/internal/utils"
)

// Reader is the read side of the habit store used by the jobs.
type Reader interface {
	ReadSnapshot(ctx context.Context, start, end string) (models.Snapshot, error)
}

type Generator struct {
	store Reader
	now   func() time.Time
	log   *log.Logger
}

func New(store Reader) *Generator {
	return &Generator{store: store, now: time.Now, log: logger.Component("summary")}
}

// WithClock returns a copy of g that reads the time from now.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	cp := *g
	cp.now = now
	return &cp
}

func (g *Generator) snapshot(ctx context.Context, today time.Time) (models.Snapshot, error) {
	start, end := stats.WeekRange(today)
	return g.store.ReadSnapshot(ctx, start, end)
}

// Morning lists habits that are behind: weekly target not met and nothing done
// in the last three days. It returns nil when every habit is on track.
func (g *Generator) Morning(ctx context.Context) (*models.Notification, error) {
	today := g.now()
	snap, err := g.snapshot(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("morning reminder: %w", err)
	}

	ix := stats.NewIndex(snap.Completions)
	last := stats.LastCompletionMap(snap.LastCompletions)

	var lines []string
	for _, h := range snap.Habits {
		if stats.MetWeeklyTarget(stats.Last7Days(ix, h.ID, today), h.TargetPerWeek) {
			continue
		}
		if stats.CompletedWithin(ix, h.ID, today, constants.RecentWindowDays) {
			continue
		}
		days, err := stats.DaysSince(h, last[h.ID], today)
		if err != nil {
			return nil, fmt.Errorf("morning reminder: %w", err)
		}
		lines = append(lines, fmt.Sprintf("%s in %d days.", h.Name, days))
	}

	return compose(constants.MorningTitle, constants.MorningHeader, lines), nil
}

// Evening lists habits completed today, marking those whose weekly target is met.
// It returns nil when nothing was completed today.
func (g *Generator) Evening(ctx context.Context) (*models.Notification, error) {
	today := g.now()
	snap, err := g.snapshot(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("evening summary: %w", err)
	}

	var lines []string
	for _, row := range stats.HistoryRows(snap, today) {
		if !row.IsCompletedToday {
			continue
		}
		line := row.Habit.Name
		if row.MetWeeklyTarget {
			line += constants.TargetMetTag
		}
		lines = append(lines, line)
	}

	return compose(constants.EveningTitle, constants.EveningHeader, lines), nil
}

func compose(title, header string, lines []string) *models.Notification {
	if len(lines) == 0 {
		return nil
	}
	body := header + "\n" + strings.Join(lines, "\n")
	return &models.Notification{
		Title: title,
		Body:  strings.TrimRight(body, " \t\r\n"),
	}
}

// RunMorningReminder is the trigger entry point. Failures are logged and
// reported as "no notification".
func (g *Generator) RunMorningReminder(ctx context.Context) *models.Notification {
	n, err := g.Morning(ctx)
	if err != nil {
		g.log.Error("morning reminder failed", "error", err)
		return nil
	}
	g.log.Info("morning reminder generated", "date", utils.Today(g.now()), "notify", n != nil)
	return n
}

// RunEveningSummary is the trigger entry point. Failures are logged and
// reported as "no notification".
func (g *Generator) RunEveningSummary(ctx context.Context) *models.Notification {
	n, err := g.Evening(ctx)
	if err != nil {
		g.log.Error("evening summary failed", "error", err)
		return nil
	}
	g.log.Info("evening summary generated", "date", utils.Today(g.now()), "notify", n != nil)
	return n
}
