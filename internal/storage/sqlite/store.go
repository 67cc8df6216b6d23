package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/migration"
	"github.com/julianstephens/habitkeep/internal/storage"
	"github.com/julianstephens/habitkeep/migrations"
)

// Store is the default habit store, a single SQLite file in WAL mode.
// Writes are serialised by writeMu within a handle and by SQLite's write lock
// across handles; readers run alongside them.
type Store struct {
	path string
	db   *sql.DB
	hub  *storage.Hub
	log  *log.Logger

	writeMu sync.Mutex

	now   func() time.Time
	newID func() string

	// afterReplaceDelete runs inside ReplaceAllHabits between the deletes and the
	// inserts. Tests use it to force a mid-transaction failure.
	afterReplaceDelete func() error
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{
		path:  path,
		hub:   storage.NewHub(),
		log:   logger.Component("sqlite"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// dsn opens write transactions with BEGIN IMMEDIATE so a handle waiting on
// another process's writer goes through busy_timeout instead of failing with
// SQLITE_BUSY on lock upgrade. Read-only transactions stay deferred.
func dsn(path string) string {
	return fmt.Sprintf("%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path, constants.DBBusyTimeoutMs)
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", dsn(s.path))
	if err != nil {
		return errors.Storage("open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return errors.Storage("open", err)
	}
	s.db = db
	return nil
}

// Init creates the database file if needed and applies pending migrations.
func (s *Store) Init() error {
	if s.db != nil {
		return s.runMigrations()
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and checks its schema version.
// Older schemas are upgraded in place so existing rows keep their data.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if err := runner.ValidateVersion(); err != nil {
		return err
	}
	return s.runMigrations()
}

func (s *Store) Close() error {
	s.hub.Close()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite)
}

func (s *Store) runMigrations() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		s.log.Info(msg)
	})
	return err
}

// Migrate applies pending migrations to an existing database, reporting each
// step through logFn.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	runner, err := s.existingRunner()
	if err != nil {
		return 0, err
	}
	if err := runner.ValidateVersion(); err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(logFn)
}

// PendingMigrations reports the schema version and the migrations Migrate
// would apply, without changing anything.
func (s *Store) PendingMigrations() (int, []migration.Migration, error) {
	runner, err := s.existingRunner()
	if err != nil {
		return 0, nil, err
	}
	return runner.Pending(0)
}

func (s *Store) existingRunner() (*migration.Runner, error) {
	if s.db == nil {
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			return nil, fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		if err := s.open(); err != nil {
			return nil, err
		}
	}
	return s.runner()
}

// Subscribe registers for committed mutation events.
func (s *Store) Subscribe() *storage.Subscription {
	return s.hub.Subscribe()
}

func (s *Store) publish(ev storage.Event) {
	s.log.Debug("committed", "kind", ev.Kind, "habit", ev.HabitID, "date", ev.Date)
	s.hub.Publish(ev)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Storage(op, err)
	}
	return nil
}
