package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitkeep/internal/cli"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/notifier"
)

// NotifyCmd runs one summary job now, as the daemon would at its trigger time.
type NotifyCmd struct {
	Kind   string `arg:"" enum:"morning,evening" help:"Which summary to send: morning or evening."`
	DryRun bool   `help:"Print the notification to stdout instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if ctx.Config != nil && !ctx.Config.Notifications.Enabled && !c.DryRun {
		ctx.Println("Notifications are disabled in config.")
		return nil
	}

	n := generate(context.Background(), ctx, c.Kind)
	if n == nil {
		ctx.Printf("Nothing to report for the %s summary.\n", c.Kind)
		return nil
	}

	sender := ctx.Notifier
	if c.DryRun || sender == nil {
		sender = notifier.NewStdoutSender(ctx.Out)
	}
	if err := sender.Send(context.Background(), n); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

func generate(runCtx context.Context, ctx *cli.Context, kind string) *models.Notification {
	if kind == "morning" {
		return ctx.Summary.RunMorningReminder(runCtx)
	}
	return ctx.Summary.RunEveningSummary(runCtx)
}
