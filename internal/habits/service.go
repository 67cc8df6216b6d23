// Package habits is the read/write facade shared by the CLI, the TUI and the widget.
// It pairs the store with the aggregation, ordering and transfer packages so no
// surface re-derives history or weekly targets on its own.
package habits

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/models"
	"github.com/julianstephens/habitkeep/internal/ordering"
	"github.com/julianstephens/habitkeep/internal/stats"
	"github.com/julianstephens/habitkeep/internal/storage"
	"github.com/julianstephens/habitkeep/internal/transfer"
	"github.com/julianstephens/habitkeep/internal/utils"
	"github.com/julianstephens/habitkeep/internal/validation"
)

// Bounds wide enough to cover every stored date.
const (
	minDate = "0000-01-01"
	maxDate = "9999-12-31"
)

// Backoff for a Watch whose first read fails.
const (
	watchRetryDelay    = 250 * time.Millisecond
	maxWatchRetryDelay = 5 * time.Second
)

type Service struct {
	store storage.Provider
	order *ordering.Manager
	now   func() time.Time
	log   *log.Logger

	retryDelay time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		order: ordering.New(store),
		now:   time.Now,
		log:   logger.Component("habits"),

		retryDelay: watchRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// TodayDate returns today's local calendar day.
func (s *Service) TodayDate() string {
	return utils.Today(s.now())
}

func (s *Service) Add(ctx context.Context, name string, targetPerWeek int) (string, error) {
	return s.store.AddHabit(ctx, name, targetPerWeek)
}

func (s *Service) Update(ctx context.Context, id, name string, targetPerWeek int) error {
	return s.store.UpdateHabit(ctx, id, name, targetPerWeek)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteHabit(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (models.Habit, error) {
	return s.store.GetHabit(ctx, id)
}

// List returns every habit in display order.
func (s *Service) List(ctx context.Context) ([]models.Habit, error) {
	return s.order.Current(ctx)
}

// Resolve finds a habit by exact id, then by case-insensitive name.
func (s *Service) Resolve(ctx context.Context, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, errors.Validation("habit reference must not be blank")
	}

	habits, err := s.store.GetAllHabits(ctx)
	if err != nil {
		return models.Habit{}, err
	}

	var matches []models.Habit
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}

	switch len(matches) {
	case 0:
		return models.Habit{}, errors.NotFound("habit", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, errors.Validation(fmt.Sprintf("%d habits are named %q, use the id instead", len(matches), ref))
	}
}

// Toggle flips the completion of habitID on date.
func (s *Service) Toggle(ctx context.Context, habitID, date string) (bool, error) {
	return s.store.ToggleCompletion(ctx, habitID, date)
}

// ToggleToday flips today's completion.
func (s *Service) ToggleToday(ctx context.Context, habitID string) (bool, error) {
	return s.store.ToggleCompletion(ctx, habitID, s.TodayDate())
}

func (s *Service) SetCompletion(ctx context.Context, habitID, date string, complete bool) error {
	return s.store.SetCompletion(ctx, habitID, date, complete)
}

// SetHistory applies a batch of per-day completion states, as produced by the
// thirty-day editor. Dates are checked before anything is written.
func (s *Service) SetHistory(ctx context.Context, habitID string, days map[string]bool) error {
	for date := range days {
		if !utils.ValidateDate(date) {
			return errors.Validation(fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", date))
		}
	}
	for date, complete := range days {
		if err := s.store.SetCompletion(ctx, habitID, date, complete); err != nil {
			return err
		}
	}
	return nil
}

// Today returns every habit with today's state and the trailing seven days.
func (s *Service) Today(ctx context.Context) ([]models.HabitWithHistory, error) {
	today := s.now()
	start, end := stats.WeekRange(today)
	snap, err := s.store.ReadSnapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return stats.HistoryRows(snap, today), nil
}

// ThirtyDays returns the last thirty days of one habit.
func (s *Service) ThirtyDays(ctx context.Context, habitID string) (models.HabitWith30DayHistory, error) {
	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return models.HabitWith30DayHistory{}, err
	}
	today := s.now()
	start, end := stats.MonthRange(today)
	completions, err := s.store.GetCompletionsForHabitInRange(ctx, habitID, start, end)
	if err != nil {
		return models.HabitWith30DayHistory{}, err
	}
	return models.HabitWith30DayHistory{
		Habit: habit,
		Days:  stats.Last30Days(stats.NewIndex(completions), habitID, today),
	}, nil
}

// AllThirtyDays returns the thirty-day history of every habit from one snapshot.
func (s *Service) AllThirtyDays(ctx context.Context) ([]models.HabitWith30DayHistory, error) {
	today := s.now()
	start, end := stats.MonthRange(today)
	snap, err := s.store.ReadSnapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return stats.ThirtyDayRows(snap, today), nil
}

// TwelveMonths returns per-month completion counts for one habit, oldest first.
func (s *Service) TwelveMonths(ctx context.Context, habitID string) ([]models.MonthCount, error) {
	if _, err := s.store.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}
	today := s.now()
	start, end := stats.YearRange(today)
	completions, err := s.store.GetCompletionsForHabitInRange(ctx, habitID, start, end)
	if err != nil {
		return nil, err
	}
	return stats.TwelveMonths(completions, habitID, today), nil
}

// Reorder applies the display order given by ids; unknown ids are ignored.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	return s.order.ReorderIDs(ctx, ids)
}

func (s *Service) MoveUp(ctx context.Context, id string) error {
	return s.order.MoveUp(ctx, id)
}

func (s *Service) MoveDown(ctx context.Context, id string) error {
	return s.order.MoveDown(ctx, id)
}

// Import replaces every habit with the names read from r. Nothing changes when
// the payload holds no names.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	names, err := transfer.ReadNames(r)
	if err != nil {
		return 0, err
	}
	if err := s.store.ReplaceAllHabits(ctx, names); err != nil {
		return 0, err
	}
	s.log.Info("habits imported", "count", len(names))
	return len(names), nil
}

// Export writes the comma-joined habit names in display order.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	habits, err := s.List(ctx)
	if err != nil {
		return err
	}
	return transfer.WriteNames(w, habits)
}

// Validate audits every stored habit and completion.
func (s *Service) Validate(ctx context.Context) (validation.ValidationResult, error) {
	snap, err := s.store.ReadSnapshot(ctx, minDate, maxDate)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return validation.New().ValidateSnapshot(snap), nil
}

// Watch delivers the Today view once immediately and again after every committed
// store mutation, until ctx is cancelled. Deliveries are not coalesced.
// The first read is retried with backoff until it succeeds; a later failed
// refresh is skipped and the next mutation delivers again.
func (s *Service) Watch(ctx context.Context) <-chan []models.HabitWithHistory {
	out := make(chan []models.HabitWithHistory)
	sub := s.store.Subscribe()

	go func() {
		defer close(out)
		defer sub.Close()

		deliver := func(rows []models.HabitWithHistory) bool {
			select {
			case out <- rows:
				return true
			case <-ctx.Done():
				return false
			}
		}

		delay := s.retryDelay
		for {
			rows, err := s.Today(ctx)
			if err == nil {
				if !deliver(rows) {
					return
				}
				break
			}
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("watch initial read failed, retrying", "error", err, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			delay = min(delay*2, maxWatchRetryDelay)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Events():
				if !ok {
					return
				}
				rows, err := s.Today(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.log.Warn("watch refresh failed", "error", err)
					continue
				}
				if !deliver(rows) {
					return
				}
			}
		}
	}()

	return out
}
