package main

import (
	stderrors "errors"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitkeep/internal/cli"
	"github.com/julianstephens/habitkeep/internal/cli/habits"
	"github.com/julianstephens/habitkeep/internal/cli/system"
	"github.com/julianstephens/habitkeep/internal/config"
	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/keyring"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/notifier"
	"github.com/julianstephens/habitkeep/internal/storage"
	"github.com/julianstephens/habitkeep/internal/storage/postgres"
	"github.com/julianstephens/habitkeep/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_path}"`
	DB      string `name:"db" help:"SQLite file path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use the OS keyring or HABITKEEP_DB_CONNECTION instead." type:"string"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init     system.InitCmd     `cmd:"" help:"Initialize habitkeep storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored habits and completions for problems."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit    habits.HabitCmd    `cmd:"" help:"Manage habits and habit tracking."`
	Import   habits.ImportCmd   `cmd:"" help:"Replace all habits with a comma-separated list of names."`
	Export   habits.ExportCmd   `cmd:"" help:"Export habit names as a comma-separated list."`
	Widget   system.WidgetCmd   `cmd:"" help:"Render the compact habit widget."`
	Notify   system.NotifyCmd   `cmd:"" help:"Send the morning reminder or evening summary now."`
	Daemon   system.DaemonCmd   `cmd:"" help:"Run the scheduled morning and evening notifications."`
	Backup   system.BackupCmd   `cmd:"" help:"Manage SQLite database backups."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily habit tracker with weekly targets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.DB != "" {
		if err := cfg.SetDatabase(CLI.DB); err != nil {
			errors.Fatal(err)
		}
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || cfg.Log.Debug,
		ConfigDir: cfg.Dir(),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	store, err := openStore(cfg)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	sender, err := notifier.New(cfg.Notifications.Sender)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := cli.NewContext(store, cfg, sender)
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		logger.Error("command failed", "error", err)
		logger.Close()
		errors.Fatal(err)
	}
}

// openStore picks the backend. A full connection string from the environment
// wins; a PostgreSQL URL takes its credentials from the keyring when one is
// stored and falls back to .pgpass otherwise.
func openStore(cfg *config.Config) (storage.Provider, error) {
	if cfg.Connection != "" {
		logger.Debug("using PostgreSQL from environment")
		return postgres.New(cfg.Connection), nil
	}

	path := cfg.Database.Path
	if !postgres.IsConnString(path) {
		return sqlite.NewStore(path), nil
	}

	connStr, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		logger.Debug("using PostgreSQL connection string from keyring")
		return postgres.New(connStr), nil
	case stderrors.Is(err, keyring.ErrNotFound), stderrors.Is(err, keyring.ErrKeyringUnavailable):
		logger.Debug("no keyring credentials, connecting without password", "target", keyring.MaskPassword(path))
		return postgres.New(path), nil
	default:
		return nil, err
	}
}
