package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitkeep/internal/cli"
	"github.com/julianstephens/habitkeep/internal/widget"
)

// WidgetCmd prints the compact two-column habit grid.
type WidgetCmd struct {
	Toggle string `help:"Toggle today's completion for this habit (ID or name) before rendering."`
	Watch  bool   `help:"Keep running and redraw after every change."`
	Width  int    `help:"Cell width in columns." default:"22"`
}

func (c *WidgetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	w := widget.New(ctx.Service)
	bg := context.Background()

	rows := w.Load(bg)
	if c.Toggle != "" {
		habit, err := ctx.Service.Resolve(bg, c.Toggle)
		if err != nil {
			return err
		}
		if rows, err = w.Toggle(bg, habit.ID); err != nil {
			return err
		}
	}

	if !c.Watch {
		ctx.Println(widget.Render(rows, c.Width))
		return nil
	}

	runCtx, stop := signal.NotifyContext(bg, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for today := range ctx.Service.Watch(runCtx) {
		ctx.Print("\033[H\033[2J")
		ctx.Println(widget.Render(widget.Pair(widget.Cells(today)), c.Width))
	}
	return nil
}
