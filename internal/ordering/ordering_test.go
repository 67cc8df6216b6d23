package ordering

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/storage/sqlite"
)

type fakeStore struct {
	habits  map[string]*models.Habit
	updates int
	failOn  string
}

func newFakeStore(habits ...models.Habit) *fakeStore {
	f := &fakeStore{habits: make(map[string]*models.Habit)}
	for i := range habits {
		h := habits[i]
		f.habits[h.ID] = &h
	}
	return f
}

func (f *fakeStore) GetAllHabits(ctx context.Context) ([]models.Habit, error) {
	out := make([]models.Habit, 0, len(f.habits))
	for _, h := range f.habits {
		out = append(out, *h)
	}
	return out, nil
}

func (f *fakeStore) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	if id == f.failOn {
		return stderrors.New("disk error")
	}
	h, ok := f.habits[id]
	if !ok {
		return errors.NotFound("habit", id)
	}
	f.updates++
	h.SortOrder = sortOrder
	return nil
}

func (f *fakeStore) order(t *testing.T) []string {
	t.Helper()
	habits, _ := f.GetAllHabits(context.Background())
	Sort(habits)
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	return ids
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func threeHabits() *fakeStore {
	return newFakeStore(
		models.Habit{ID: "a", Name: "A", CreatedAt: 100, SortOrder: 0},
		models.Habit{ID: "b", Name: "B", CreatedAt: 200, SortOrder: 1},
		models.Habit{ID: "c", Name: "C", CreatedAt: 300, SortOrder: 2},
	)
}

func TestSort(t *testing.T) {
	habits := []models.Habit{
		{ID: "late-default", SortOrder: 2147483647, CreatedAt: 300},
		{ID: "second", SortOrder: 1, CreatedAt: 900},
		{ID: "early-default", SortOrder: 2147483647, CreatedAt: 100},
		{ID: "first", SortOrder: 0, CreatedAt: 999},
	}
	Sort(habits)

	got := []string{habits[0].ID, habits[1].ID, habits[2].ID, habits[3].ID}
	want := []string{"first", "second", "early-default", "late-default"}
	if !equal(got, want) {
		t.Errorf("Sort() = %v, want %v", got, want)
	}
}

func TestMoveUpAndDown(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		move func(*Manager) error
		want []string
	}{
		{"move middle up", func(m *Manager) error { return m.MoveUp(ctx, "b") }, []string{"b", "a", "c"}},
		{"move middle down", func(m *Manager) error { return m.MoveDown(ctx, "b") }, []string{"a", "c", "b"}},
		{"first up is a no-op", func(m *Manager) error { return m.MoveUp(ctx, "a") }, []string{"a", "b", "c"}},
		{"last down is a no-op", func(m *Manager) error { return m.MoveDown(ctx, "c") }, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := threeHabits()
			m := New(store)
			if err := tt.move(m); err != nil {
				t.Fatalf("move failed: %v", err)
			}
			if got := store.order(t); !equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoveNoOpWritesNothing(t *testing.T) {
	store := threeHabits()
	if err := New(store).MoveUp(context.Background(), "a"); err != nil {
		t.Fatalf("MoveUp failed: %v", err)
	}
	if store.updates != 0 {
		t.Errorf("expected no writes, got %d", store.updates)
	}
}

func TestMoveUnknownHabit(t *testing.T) {
	err := New(threeHabits()).MoveDown(context.Background(), "zzz")
	if !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveNormalizesDefaultOrders(t *testing.T) {
	// Fresh habits after a migration all carry the same sort order.
	store := newFakeStore(
		models.Habit{ID: "a", CreatedAt: 100, SortOrder: 2147483647},
		models.Habit{ID: "b", CreatedAt: 200, SortOrder: 2147483647},
		models.Habit{ID: "c", CreatedAt: 300, SortOrder: 2147483647},
	)
	if err := New(store).MoveDown(context.Background(), "a"); err != nil {
		t.Fatalf("MoveDown failed: %v", err)
	}
	if got := store.order(t); !equal(got, []string{"b", "a", "c"}) {
		t.Errorf("order = %v", got)
	}
	for id, want := range map[string]int{"b": 0, "a": 1, "c": 2} {
		if store.habits[id].SortOrder != want {
			t.Errorf("habit %s: sort order %d, want %d", id, store.habits[id].SortOrder, want)
		}
	}
}

func TestReorderIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("drops unknown ids", func(t *testing.T) {
		store := threeHabits()
		if err := New(store).ReorderIDs(ctx, []string{"c", "ghost", "a", "b"}); err != nil {
			t.Fatalf("ReorderIDs failed: %v", err)
		}
		if got := store.order(t); !equal(got, []string{"c", "a", "b"}) {
			t.Errorf("order = %v", got)
		}
	})

	t.Run("only unknown ids is a no-op", func(t *testing.T) {
		store := threeHabits()
		if err := New(store).ReorderIDs(ctx, []string{"ghost"}); err != nil {
			t.Fatalf("ReorderIDs failed: %v", err)
		}
		if store.updates != 0 {
			t.Errorf("expected no writes, got %d", store.updates)
		}
	})

	t.Run("partial list leaves the rest untouched", func(t *testing.T) {
		store := threeHabits()
		if err := New(store).ReorderIDs(ctx, []string{"c"}); err != nil {
			t.Fatalf("ReorderIDs failed: %v", err)
		}
		if store.habits["c"].SortOrder != 0 || store.habits["b"].SortOrder != 1 {
			t.Errorf("unexpected sort orders: c=%d b=%d", store.habits["c"].SortOrder, store.habits["b"].SortOrder)
		}
	})
}

func TestReorderPropagatesStorageErrors(t *testing.T) {
	store := threeHabits()
	store.failOn = "b"
	habits, _ := New(store).Current(context.Background())
	if err := New(store).Reorder(context.Background(), habits); err == nil {
		t.Error("expected storage error")
	}
}

func TestReorderWithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitkeep.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()

	for _, name := range []string{"A", "B", "C"} {
		if _, err := store.AddHabit(ctx, name, 4); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}
	}

	m := New(store)
	habits, err := m.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	byName := make(map[string]models.Habit)
	for _, h := range habits {
		byName[h.Name] = h
	}

	if err := m.Reorder(ctx, []models.Habit{byName["B"], byName["A"], byName["C"]}); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	listed, err := store.GetAllHabits(ctx)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	got := []string{listed[0].Name, listed[1].Name, listed[2].Name}
	if !equal(got, []string{"B", "A", "C"}) {
		t.Errorf("listed order = %v, want [B A C]", got)
	}
}
