package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitkeep/internal/cli"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	ctx.Println("Validating habits and completions...")
	result, err := ctx.Service.Validate(context.Background())
	if err != nil {
		return err
	}

	ctx.Println(strings.TrimRight(result.FormatReport(), "\n"))
	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s)", len(result.Conflicts))
	}
	return nil
}
