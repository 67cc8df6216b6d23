package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitkeep/internal/cli"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits with today's status and the last seven days." default:"1"`
	Edit    HabitEditCmd    `cmd:"" help:"Rename a habit or change its weekly target."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and its history."`
	Toggle  HabitToggleCmd  `cmd:"" help:"Toggle a habit's completion for a day."`
	Set     HabitSetCmd     `cmd:"" help:"Set a habit's completion for a day."`
	Up      HabitUpCmd      `cmd:"" help:"Move a habit up one place."`
	Down    HabitDownCmd    `cmd:"" help:"Move a habit down one place."`
	Reorder HabitReorderCmd `cmd:"" help:"Set the display order of habits."`
	History HabitHistoryCmd `cmd:"" help:"Show the last 30 days of a habit."`
	Months  HabitMonthsCmd  `cmd:"" help:"Show monthly completion counts for the last 12 months."`
}

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Target int    `help:"Weekly target (1-7)." default:"4"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	id, err := ctx.Service.Add(cmdContext(), c.Name, c.Target)
	if err != nil {
		return err
	}
	habit, err := ctx.Service.Get(cmdContext(), id)
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (target %d/week)\n", habit.Name, habit.TargetPerWeek)
	return nil
}

type HabitListCmd struct {
	IDs bool `help:"Show habit IDs." name:"ids"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	rows, err := ctx.Service.Today(cmdContext())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len([]rune(r.Habit.Name)))
	}

	ctx.Printf("Habits for %s:\n\n", ctx.Service.TodayDate())
	done := 0
	for _, r := range rows {
		status := "[ ]"
		if r.IsCompletedToday {
			status = "[x]"
			done++
		}
		line := fmt.Sprintf("%s %-*s  %s  %s", status, width, r.Habit.Name, cli.FormatWeek(r.Last7Days), cli.FormatTarget(r))
		if c.IDs {
			line += "  " + r.Habit.ID
		}
		ctx.Println(strings.TrimRight(line, " "))
	}
	ctx.Printf("\nCompleted today: %d/%d\n", done, len(rows))
	return nil
}

type HabitEditCmd struct {
	Habit  string `arg:"" help:"Habit ID or name."`
	Name   string `help:"New name."`
	Target int    `help:"New weekly target (1-7)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	if c.Name == "" && c.Target == 0 {
		return fmt.Errorf("nothing to change, pass --name or --target")
	}

	name, target := habit.Name, habit.TargetPerWeek
	if c.Name != "" {
		name = c.Name
	}
	if c.Target != 0 {
		target = c.Target
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("habit name must not be blank")
	}

	if err := ctx.Service.Update(cmdContext(), habit.ID, name, target); err != nil {
		return err
	}
	updated, err := ctx.Service.Get(cmdContext(), habit.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s (target %d/week)\n", updated.Name, updated.TargetPerWeek)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Service.Delete(cmdContext(), habit.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	done, err := ctx.Service.Toggle(cmdContext(), habit.ID, day)
	if err != nil {
		return err
	}
	if done {
		ctx.Printf("Marked habit %q for %s\n", habit.Name, day)
	} else {
		ctx.Printf("Unmarked habit %q for %s\n", habit.Name, day)
	}
	return nil
}

type HabitSetCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	State string `arg:"" enum:"done,undone" help:"done or undone."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitSetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Service.SetCompletion(cmdContext(), habit.ID, day, c.State == "done"); err != nil {
		return err
	}
	ctx.Printf("Set habit %q to %s for %s\n", habit.Name, c.State, day)
	return nil
}

type HabitUpCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitUpCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Service.MoveUp(cmdContext(), habit.ID); err != nil {
		return err
	}
	return printOrder(ctx)
}

type HabitDownCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitDownCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Service.Resolve(cmdContext(), c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Service.MoveDown(cmdContext(), habit.ID); err != nil {
		return err
	}
	return printOrder(ctx)
}

type HabitReorderCmd struct {
	Habits []string `arg:"" help:"Habit IDs or names in the new order. Habits not listed keep their place after these."`
}

func (c *HabitReorderCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	ids := make([]string, 0, len(c.Habits))
	seen := make(map[string]bool)
	for _, ref := range c.Habits {
		habit, err := ctx.Service.Resolve(cmdContext(), ref)
		if err != nil {
			return err
		}
		if !seen[habit.ID] {
			seen[habit.ID] = true
			ids = append(ids, habit.ID)
		}
	}

	// Unlisted habits follow in their current order.
	current, err := ctx.Service.List(cmdContext())
	if err != nil {
		return err
	}
	for _, h := range current {
		if !seen[h.ID] {
			ids = append(ids, h.ID)
		}
	}

	if err := ctx.Service.Reorder(cmdContext(), ids); err != nil {
		return err
	}
	return printOrder(ctx)
}

func printOrder(ctx *cli.Context) error {
	habits, err := ctx.Service.List(cmdContext())
	if err != nil {
		return err
	}
	for i, h := range habits {
		ctx.Printf("%d. %s\n", i+1, h.Name)
	}
	return nil
}
