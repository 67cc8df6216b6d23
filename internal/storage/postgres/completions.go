package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/storage"
	"github.com/julianstephens/habitkeep/internal/utils"
)

const defaultTarget = constants.DefaultTargetPerWeek

func checkDate(date string) error {
	if !utils.ValidateDate(date) {
		return errors.Validation("invalid date " + date + " (expected YYYY-MM-DD)")
	}
	return nil
}

func habitExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM habits WHERE id = $1 FOR UPDATE`, id).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound("habit", id)
	}
	return errors.Storage("check habit", err)
}

// ToggleCompletion flips (habitID, date) inside one transaction. The habit row is
// locked first so toggles from other processes queue behind this one.
func (s *Store) ToggleCompletion(ctx context.Context, habitID, date string) (bool, error) {
	if err := checkDate(date); err != nil {
		return false, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var complete bool
	err := s.withTx(ctx, "toggle completion", func(tx *sql.Tx) error {
		if err := habitExists(ctx, tx, habitID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = $1 AND date = $2`, habitID, date)
		if err != nil {
			return errors.Storage("toggle completion", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return errors.Storage("toggle completion", err)
		}
		if n > 0 {
			complete = false
			return nil
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO completions (habit_id, date) VALUES ($1, $2)`, habitID, date); err != nil {
			return errors.Storage("toggle completion", err)
		}
		complete = true
		return nil
	})
	if err != nil {
		return false, err
	}

	s.publish(storage.Event{Kind: storage.EventCompletionChanged, HabitID: habitID, Date: date})
	return complete, nil
}

// SetCompletion makes (habitID, date) present or absent. Repeating a call is a no-op.
func (s *Store) SetCompletion(ctx context.Context, habitID, date string, complete bool) error {
	if err := checkDate(date); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var changed bool
	err := s.withTx(ctx, "set completion", func(tx *sql.Tx) error {
		if err := habitExists(ctx, tx, habitID); err != nil {
			return err
		}

		var result sql.Result
		var err error
		if complete {
			result, err = tx.ExecContext(ctx, `
				INSERT INTO completions (habit_id, date) VALUES ($1, $2)
				ON CONFLICT (habit_id, date) DO NOTHING`, habitID, date)
		} else {
			result, err = tx.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = $1 AND date = $2`, habitID, date)
		}
		if err != nil {
			return errors.Storage("set completion", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return errors.Storage("set completion", err)
		}
		changed = n > 0
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.publish(storage.Event{Kind: storage.EventCompletionChanged, HabitID: habitID, Date: date})
	}
	return nil
}

func (s *Store) IsComplete(ctx context.Context, habitID, date string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM completions WHERE habit_id = $1 AND date = $2`, habitID, date).Scan(&one)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Storage("is complete", err)
	}
	return true, nil
}

func scanCompletions(rows *sql.Rows) ([]models.Completion, error) {
	defer rows.Close()
	completions := []models.Completion{}
	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.HabitID, &c.Date); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (s *Store) GetCompletionsForDate(ctx context.Context, date string) ([]models.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT habit_id, date FROM completions WHERE date = $1 ORDER BY habit_id`, date)
	if err != nil {
		return nil, errors.Storage("completions for date", err)
	}
	completions, err := scanCompletions(rows)
	if err != nil {
		return nil, errors.Storage("completions for date", err)
	}
	return completions, nil
}

func rangeQuery(ctx context.Context, q querier, start, end string) ([]models.Completion, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT habit_id, date FROM completions
		WHERE date >= $1 AND date <= $2
		ORDER BY date, habit_id`, start, end)
	if err != nil {
		return nil, err
	}
	return scanCompletions(rows)
}

func (s *Store) GetCompletionsInRange(ctx context.Context, start, end string) ([]models.Completion, error) {
	completions, err := rangeQuery(ctx, s.db, start, end)
	if err != nil {
		return nil, errors.Storage("completions in range", err)
	}
	return completions, nil
}

// GetCompletionsForHabitInRange returns an empty list for unknown or deleted habits.
func (s *Store) GetCompletionsForHabitInRange(ctx context.Context, habitID, start, end string) ([]models.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT habit_id, date FROM completions
		WHERE habit_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date`, habitID, start, end)
	if err != nil {
		return nil, errors.Storage("habit completions in range", err)
	}
	completions, err := scanCompletions(rows)
	if err != nil {
		return nil, errors.Storage("habit completions in range", err)
	}
	return completions, nil
}

func lastCompletions(ctx context.Context, q querier) ([]models.LastCompletion, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT habit_id, MAX(date) FROM completions GROUP BY habit_id ORDER BY habit_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.LastCompletion{}
	for rows.Next() {
		var lc models.LastCompletion
		if err := rows.Scan(&lc.HabitID, &lc.Date); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

func (s *Store) GetLastCompletionDates(ctx context.Context) ([]models.LastCompletion, error) {
	out, err := lastCompletions(ctx, s.db)
	if err != nil {
		return nil, errors.Storage("last completions", err)
	}
	return out, nil
}

// ReadSnapshot reads everything inside one repeatable-read transaction.
func (s *Store) ReadSnapshot(ctx context.Context, start, end string) (models.Snapshot, error) {
	snap := models.Snapshot{Start: start, End: end}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return snap, errors.Storage("snapshot", err)
	}
	defer func() { _ = tx.Rollback() }()

	if snap.Habits, err = queryHabits(ctx, tx); err != nil {
		return snap, errors.Storage("snapshot", err)
	}
	if snap.Completions, err = rangeQuery(ctx, tx, start, end); err != nil {
		return snap, errors.Storage("snapshot", err)
	}
	if snap.LastCompletions, err = lastCompletions(ctx, tx); err != nil {
		return snap, errors.Storage("snapshot", err)
	}
	return snap, nil
}
