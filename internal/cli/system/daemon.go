package system

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitkeep/internal/cli"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/scheduler"
)

// DaemonCmd fires the morning reminder and evening summary every day at the
// configured times until interrupted.
type DaemonCmd struct{}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if ctx.Config == nil || !ctx.Config.Notifications.Enabled {
		return errors.New("notifications are disabled in config")
	}

	s, err := newScheduler(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, u := range s.Schedule(s.Now()) {
		ctx.Printf("Next %s summary at %s\n", u.Name, u.At.Format("Mon 15:04"))
	}
	return s.Run(runCtx)
}

func newScheduler(ctx *cli.Context) (*scheduler.Scheduler, error) {
	job := func(kind string) func(context.Context) {
		return func(runCtx context.Context) {
			n := generate(runCtx, ctx, kind)
			if n == nil || ctx.Notifier == nil {
				return
			}
			if err := ctx.Notifier.Send(runCtx, n); err != nil {
				logger.Warn("failed to deliver notification", "job", kind, "error", err)
			}
		}
	}

	return scheduler.New(
		scheduler.Job{Name: "morning", At: ctx.Config.Notifications.Morning, Run: job("morning")},
		scheduler.Job{Name: "evening", At: ctx.Config.Notifications.Evening, Run: job("evening")},
	)
}
