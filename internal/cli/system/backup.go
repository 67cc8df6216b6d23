package system

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/habitkeep/internal/backup"
	"github.com/julianstephens/habitkeep/internal/cli"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a backup now." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the database from a backup."`
}

func backups(ctx *cli.Context) (*backup.Manager, error) {
	mgr := ctx.Backups()
	if mgr == nil {
		return nil, fmt.Errorf("backups are only supported for SQLite databases")
	}
	return mgr, nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backups(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.Printf("Created backup: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backups(ctx)
	if err != nil {
		return err
	}
	list, err := mgr.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Println("No backups found.")
		return nil
	}

	ctx.Printf("Backups in %s:\n", mgr.Dir())
	for _, b := range list {
		ctx.Printf("  %s  %s  %d KB\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), b.Size/1024)
	}
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" optional:"" help:"Backup file to restore (default: the newest backup)."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backups(ctx)
	if err != nil {
		return err
	}

	path := c.File
	if path == "" {
		list, err := mgr.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return fmt.Errorf("no backups found in %s", mgr.Dir())
		}
		path = list[0].Path
	} else if filepath.Dir(path) == "." {
		path = filepath.Join(mgr.Dir(), path)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := mgr.Restore(path)
	if err != nil {
		return err
	}
	if previous != "" {
		ctx.Printf("Saved the replaced database as %s\n", filepath.Base(previous))
	}
	ctx.Printf("Restored %s\n", filepath.Base(path))
	return nil
}
