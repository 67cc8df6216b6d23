package habits

import (
	"context"
	"strings"

	"github.com/julianstephens/habitkeep/internal/cli"
	"github.com/julianstephens/habitkeep/internal/constants"
)

func cmdContext() context.Context {
	return context.Background()
}

type HabitHistoryCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitHistoryCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	history, err := ctx.Service.ThirtyDays(cmdContext(), habit.ID)
	if err != nil {
		return err
	}

	ctx.Printf("%s: last %d days\n\n", habit.Name, constants.MonthWindowDays)
	done := 0
	for _, d := range history.Days {
		mark := "·"
		if d.Complete {
			mark = "■"
			done++
		}
		ctx.Printf("  %s %s\n", d.Date, mark)
	}
	ctx.Printf("\nCompleted: %d/%d\n", done, len(history.Days))
	return nil
}

type HabitMonthsCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitMonthsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	months, err := ctx.Service.TwelveMonths(cmdContext(), habit.ID)
	if err != nil {
		return err
	}

	ctx.Printf("%s: last %d months\n\n", habit.Name, constants.YearWindowMonths)
	for _, m := range months {
		ctx.Printf("  %s %3d %s\n", m.Month, m.Count, strings.Repeat("█", m.Count))
	}
	return nil
}
