package storage

import "sync"

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventHabitAdded        EventKind = "habit_added"
	EventHabitUpdated      EventKind = "habit_updated"
	EventHabitDeleted      EventKind = "habit_deleted"
	EventHabitsReplaced    EventKind = "habits_replaced"
	EventSortOrderChanged  EventKind = "sort_order_changed"
	EventCompletionChanged EventKind = "completion_changed"
)

// Event describes one committed mutation.
type Event struct {
	Kind    EventKind
	HabitID string
	Date    string
}

// Hub fans committed mutations out to subscribers. Publish never blocks: each
// subscriber owns an unbounded queue drained by its own goroutine.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber. Subscribing to a closed hub returns a
// subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub:    h,
		signal: make(chan struct{}, 1),
		out:    make(chan Event),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	closed := h.closed
	if !closed {
		h.subs[s] = struct{}{}
	}
	h.mu.Unlock()

	go s.pump()
	if closed {
		s.Close()
	}
	return s
}

// Publish queues ev for every current subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		s.enqueue(ev)
	}
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.closed = true
	h.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Subscription receives events in publish order until closed.
type Subscription struct {
	hub *Hub

	mu    sync.Mutex
	queue []Event

	signal chan struct{}
	out    chan Event
	done   chan struct{}
	once   sync.Once
}

// Events returns the delivery channel. It is closed after Close.
func (s *Subscription) Events() <-chan Event {
	return s.out
}

// Close unregisters the subscription and drops undelivered events.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.done)
	})
}

func (s *Subscription) enqueue(ev Event) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.signal:
				continue
			case <-s.done:
				return
			}
		}
		ev := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
