// Package config loads habitkeep settings with precedence:
// defaults, then the YAML file, then HABITKEEP_* environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/storage/postgres"
	"github.com/julianstephens/habitkeep/internal/utils"
)

// Config is read-only once Load returns.
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Log           LogConfig           `yaml:"log"`

	// Connection is a full PostgreSQL connection string, password included.
	// Env-only, never read from YAML.
	Connection string `yaml:"-"`

	path string
}

type DatabaseConfig struct {
	// Path is a SQLite file path or a password-free PostgreSQL URL.
	Path string `yaml:"path" validate:"required"`
}

type NotificationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Morning string `yaml:"morning" validate:"required,clock"`
	Evening string `yaml:"evening" validate:"required,clock"`
	Sender  string `yaml:"sender" validate:"oneof=tray stdout"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("clock", validateClock); err != nil {
		panic(fmt.Sprintf("failed to register clock validator: %v", err))
	}
}

func validateClock(fl validator.FieldLevel) bool {
	return utils.ValidateTimeFormat(fl.Field().String())
}

func newDefaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: constants.DefaultDBPath,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Morning: constants.DefaultMorningTime,
			Evening: constants.DefaultEveningTime,
			Sender:  constants.SenderTray,
		},
	}
}

// Load reads the config file at path. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = constants.DefaultConfigPath
	}
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	cfg := newDefaults()
	cfg.path = path

	if err := loadYAMLFile(cfg, path); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides only honours non-empty variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HABITKEEP_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("HABITKEEP_DB_CONNECTION"); v != "" {
		cfg.Connection = v
	}
	if v := os.Getenv("HABITKEEP_MORNING_TIME"); v != "" {
		cfg.Notifications.Morning = v
	}
	if v := os.Getenv("HABITKEEP_EVENING_TIME"); v != "" {
		cfg.Notifications.Evening = v
	}
	if v := os.Getenv("HABITKEEP_NOTIFICATIONS"); v != "" {
		cfg.Notifications.Enabled = parseBool(v)
	}
	if v := os.Getenv("HABITKEEP_NOTIFIER"); v != "" {
		cfg.Notifications.Sender = v
	}
	if v := os.Getenv("HABITKEEP_DEBUG"); v != "" {
		cfg.Log.Debug = parseBool(v)
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Validation(fmt.Sprintf("config %s: invalid value %q (%s)", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag()))
		}
		return fmt.Errorf("validating config: %w", err)
	}
	return c.SetDatabase(c.Database.Path)
}

// SetDatabase replaces the database target, as the --db flag does. PostgreSQL
// URLs must not carry a password; SQLite paths have ~ expanded.
func (c *Config) SetDatabase(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return errors.Validation("database path must not be empty")
	}
	if postgres.IsConnString(target) {
		if _, err := postgres.ValidateConnString(target); err != nil {
			if stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
				return errors.Validation("PostgreSQL connection strings with embedded passwords are not allowed here; use 'habitkeep keyring set' or HABITKEEP_DB_CONNECTION")
			}
			return err
		}
		c.Database.Path = target
		return nil
	}

	expanded, err := ExpandHome(target)
	if err != nil {
		return err
	}
	c.Database.Path = expanded
	return nil
}

// UsesPostgres reports whether the data lives in PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Connection != "" || postgres.IsConnString(c.Database.Path)
}

// Path is the config file this Config was loaded from.
func (c *Config) Path() string { return c.path }

// Dir is the directory holding the config file, logs and the default database.
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
