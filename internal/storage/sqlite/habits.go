package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/storage"
	"github.com/julianstephens/habitkeep/internal/validation"
)

const habitColumns = "id, name, target_per_week, created_at, sort_order"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	err := row.Scan(&h.ID, &h.Name, &h.TargetPerWeek, &h.CreatedAt, &h.SortOrder)
	return h, err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryHabits(ctx context.Context, q querier) ([]models.Habit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+habitColumns+`
		FROM habits
		ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) AddHabit(ctx context.Context, name string, targetPerWeek int) (string, error) {
	name, err := validation.NormalizeName(name)
	if err != nil {
		return "", err
	}
	target := validation.ClampTarget(targetPerWeek)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id := s.newID()
	err = s.withTx(ctx, "add habit", func(tx *sql.Tx) error {
		var maxOrder int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), 0) FROM habits`).Scan(&maxOrder); err != nil {
			return errors.Storage("add habit", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO habits (id, name, target_per_week, created_at, sort_order)
			VALUES (?, ?, ?, ?, ?)`,
			id, name, target, s.now().UnixMilli(), maxOrder+1)
		return errors.Storage("add habit", err)
	})
	if err != nil {
		return "", err
	}

	s.publish(storage.Event{Kind: storage.EventHabitAdded, HabitID: id})
	return id, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, errors.NotFound("habit", id)
		}
		return models.Habit{}, errors.Storage("get habit", err)
	}
	return h, nil
}

func (s *Store) GetAllHabits(ctx context.Context) ([]models.Habit, error) {
	habits, err := queryHabits(ctx, s.db)
	if err != nil {
		return nil, errors.Storage("list habits", err)
	}
	return habits, nil
}

func (s *Store) UpdateHabit(ctx context.Context, id, name string, targetPerWeek int) error {
	name, err := validation.NormalizeName(name)
	if err != nil {
		// Blank names on update are ignored rather than rejected.
		s.log.Debug("ignoring update with blank name", "habit", id)
		return nil
	}
	target := validation.ClampTarget(targetPerWeek)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET name = ?, target_per_week = ? WHERE id = ?`,
		name, target, id)
	if err != nil {
		return errors.Storage("update habit", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Storage("update habit", err)
	}
	if n == 0 {
		return errors.NotFound("habit", id)
	}

	s.publish(storage.Event{Kind: storage.EventHabitUpdated, HabitID: id})
	return nil
}

// DeleteHabit removes a habit and, through the foreign key, its completions.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return errors.Storage("delete habit", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Storage("delete habit", err)
	}
	if n > 0 {
		s.publish(storage.Event{Kind: storage.EventHabitDeleted, HabitID: id})
	}
	return nil
}

func (s *Store) ReplaceAllHabits(ctx context.Context, names []string) error {
	cleaned := make([]string, len(names))
	for i, name := range names {
		n, err := validation.NormalizeName(name)
		if err != nil {
			return err
		}
		cleaned[i] = n
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	createdAt := s.now().UnixMilli()
	err := s.withTx(ctx, "replace habits", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM completions`); err != nil {
			return errors.Storage("replace habits", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM habits`); err != nil {
			return errors.Storage("replace habits", err)
		}
		if s.afterReplaceDelete != nil {
			if err := s.afterReplaceDelete(); err != nil {
				return errors.Storage("replace habits", err)
			}
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO habits (id, name, target_per_week, created_at, sort_order)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return errors.Storage("replace habits", err)
		}
		defer stmt.Close()

		for i, name := range cleaned {
			if _, err := stmt.ExecContext(ctx, s.newID(), name, defaultTarget, createdAt, i); err != nil {
				return errors.Storage("replace habits", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(storage.Event{Kind: storage.EventHabitsReplaced})
	return nil
}

func (s *Store) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, `UPDATE habits SET sort_order = ? WHERE id = ?`, sortOrder, id)
	if err != nil {
		return errors.Storage("update sort order", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Storage("update sort order", err)
	}
	if n == 0 {
		return errors.NotFound("habit", id)
	}

	s.publish(storage.Event{Kind: storage.EventSortOrderChanged, HabitID: id})
	return nil
}
