// Package ordering keeps the user-controlled display order of habits.
package ordering

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/models"
)

// Store is the slice of the habit store the manager needs.
type Store interface {
	GetAllHabits(ctx context.Context) ([]models.Habit, error)
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error
}

// Sort orders habits by sort order, then creation time. Never-reordered habits
// that share the default sort order therefore keep a deterministic order.
func Sort(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt < habits[j].CreatedAt
	})
}

type Manager struct {
	store Store
	log   *log.Logger
	mu    sync.Mutex
}

func New(store Store) *Manager {
	return &Manager{store: store, log: logger.Component("ordering")}
}

// Current returns every habit in display order.
func (m *Manager) Current(ctx context.Context) ([]models.Habit, error) {
	habits, err := m.store.GetAllHabits(ctx)
	if err != nil {
		return nil, err
	}
	Sort(habits)
	return habits, nil
}

// Reorder rewrites each habit's sort order to its index in habits. Habits left
// out keep their sort order. A habit deleted concurrently is skipped.
func (m *Manager) Reorder(ctx context.Context, habits []models.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reorder(ctx, habits)
}

func (m *Manager) reorder(ctx context.Context, habits []models.Habit) error {
	for i, h := range habits {
		if err := m.store.UpdateSortOrder(ctx, h.ID, i); err != nil {
			if stderrors.Is(err, errors.ErrNotFound) {
				m.log.Debug("skipping vanished habit", "habit", h.ID)
				continue
			}
			return err
		}
	}
	return nil
}

// ReorderIDs applies the order given by ids. Unknown ids are dropped; if none
// remain nothing changes.
func (m *Manager) ReorderIDs(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.Current(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]models.Habit, len(current))
	for _, h := range current {
		byID[h.ID] = h
	}

	ordered := make([]models.Habit, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		h, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, h)
	}
	if len(ordered) == 0 {
		return nil
	}
	return m.reorder(ctx, ordered)
}

// MoveUp swaps the habit with its predecessor. The first habit stays put.
func (m *Manager) MoveUp(ctx context.Context, id string) error {
	return m.move(ctx, id, -1)
}

// MoveDown swaps the habit with its successor. The last habit stays put.
func (m *Manager) MoveDown(ctx context.Context, id string) error {
	return m.move(ctx, id, 1)
}

func (m *Manager) move(ctx context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	habits, err := m.Current(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, h := range habits {
		if h.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFound("habit", id)
	}

	target := idx + delta
	if target < 0 || target >= len(habits) {
		return nil
	}
	habits[idx], habits[target] = habits[target], habits[idx]
	return m.reorder(ctx, habits)
}
