package habits

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/habitkeep/internal/cli"
)

type ImportCmd struct {
	File string `arg:"" help:"File with comma- or newline-separated habit names, or - for stdin."`
	Yes  bool   `short:"y" help:"Skip the confirmation; every existing habit and its history is replaced."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if !c.Yes {
		return fmt.Errorf("import replaces every habit and deletes all history; re-run with --yes to continue")
	}

	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	if mgr := ctx.Backups(); mgr != nil {
		path, err := mgr.CreateIfExists()
		if err != nil {
			return fmt.Errorf("failed to back up before import: %w", err)
		}
		if path != "" {
			ctx.Printf("Backed up current habits to %s\n", path)
		}
	}

	n, err := ctx.Service.Import(cmdContext(), r)
	if err != nil {
		return err
	}
	ctx.Printf("Imported %d habits\n", n)
	return nil
}

type ExportCmd struct {
	File string `arg:"" optional:"" help:"Output file (default: stdout)."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if c.File == "" {
		if err := ctx.Service.Export(cmdContext(), ctx.Out); err != nil {
			return err
		}
		ctx.Println()
		return nil
	}

	f, err := os.Create(c.File)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := ctx.Service.Export(cmdContext(), f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("Exported habits to %s\n", c.File)
	return nil
}
