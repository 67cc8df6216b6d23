// Package scheduler fires the daily summary jobs at their configured wall-clock
// times.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitkeep/internal/logger"
	"github.com/julianstephens/habitkeep/internal/utils"
)

// Job runs once a day at At (HH:MM, local time).
type Job struct {
	Name string
	At   string
	Run  func(ctx context.Context)

	hour, minute int
}

// NextTrigger returns today at hour:minute if that is still after now,
// otherwise the same wall-clock time tomorrow.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

type Scheduler struct {
	jobs  []Job
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
	log   *log.Logger
}

func New(jobs ...Job) (*Scheduler, error) {
	parsed := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Run == nil {
			return nil, fmt.Errorf("job %q has no run function", j.Name)
		}
		h, m, err := utils.ParseClock(j.At)
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", j.Name, err)
		}
		j.hour, j.minute = h, m
		parsed = append(parsed, j)
	}
	return &Scheduler{
		jobs:  parsed,
		now:   time.Now,
		after: time.After,
		log:   logger.Component("scheduler"),
	}, nil
}

// WithClock swaps the time source and the timer, for tests.
func (s *Scheduler) WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) *Scheduler {
	s.now = now
	s.after = after
	return s
}

// Now reads the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Next returns the earliest upcoming trigger and the jobs due at that instant.
func (s *Scheduler) Next(now time.Time) (time.Time, []Job) {
	var (
		at  time.Time
		due []Job
	)
	for _, j := range s.jobs {
		t := NextTrigger(now, j.hour, j.minute)
		switch {
		case due == nil || t.Before(at):
			at, due = t, []Job{j}
		case t.Equal(at):
			due = append(due, j)
		}
	}
	return at, due
}

// Schedule lists every job with its next trigger, soonest first.
func (s *Scheduler) Schedule(now time.Time) []Upcoming {
	out := make([]Upcoming, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = Upcoming{Name: j.Name, At: NextTrigger(now, j.hour, j.minute)}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].At.Before(out[k].At) })
	return out
}

type Upcoming struct {
	Name string
	At   time.Time
}

// Run blocks until ctx is cancelled, running each job at its trigger time.
// A missed trigger is not replayed.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return fmt.Errorf("no jobs to schedule")
	}

	s.log.Info("scheduler started", "jobs", len(s.jobs))
	for {
		if ctx.Err() != nil {
			s.log.Info("scheduler stopped")
			return nil
		}

		now := s.now()
		at, due := s.Next(now)
		s.log.Debug("waiting for next trigger", "at", at.Format(time.RFC3339), "jobs", len(due))

		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil
		case <-s.after(at.Sub(now)):
		}

		for _, j := range due {
			s.log.Info("trigger fired", "job", j.Name, "date", utils.Today(at))
			j.Run(ctx)
		}
	}
}
