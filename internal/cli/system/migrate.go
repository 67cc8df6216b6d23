package system

import (
	"fmt"

	"github.com/julianstephens/habitkeep/internal/cli"
	"github.com/julianstephens/habitkeep/internal/migration"
)

type migrator interface {
	Migrate(logFn func(string)) (int, error)
	PendingMigrations() (int, []migration.Migration, error)
}

type MigrateCmd struct {
	DryRun bool `help:"List pending migrations without applying them." name:"dry-run"`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	if c.DryRun {
		current, pending, err := m.PendingMigrations()
		if err != nil {
			return fmt.Errorf("failed to check migrations: %w", err)
		}
		ctx.Printf("Schema version: %d\n", current)
		if len(pending) == 0 {
			ctx.Println("Database is up to date.")
			return nil
		}
		for _, p := range pending {
			ctx.Printf("  pending %03d_%s\n", p.Version, p.Name)
		}
		return nil
	}

	count, err := m.Migrate(func(msg string) { ctx.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
		return nil
	}
	ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	return nil
}
