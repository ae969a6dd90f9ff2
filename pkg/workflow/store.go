package workflow

import (
	"sync"

	"github.com/aretw0/recipient/pkg/domain"
)

// Setter writes into one slot of the workflow state per call.
// Map slots are merged per key: present keys overwrite, unset keys are kept.
type Setter interface {
	SetPhase(phase domain.Phase)
	MergeValues(values domain.Values)
	MergeErrors(errors domain.Errors)
	SetAlert(alert domain.Alert)
}

// Observer is notified after every slot write with the states before and after it.
// Notifications are delivered in write order. Observers must not write to the store.
type Observer func(prev, next *domain.State)

// Store holds the single mutable State of a screen.
// Safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex // Serializes notifications in write order
	state     *domain.State
	observers []subscription
	nextID    int
}

type subscription struct {
	id int
	fn Observer
}

var _ Setter = (*Store)(nil)

// NewStore creates a store holding a fresh initial state.
func NewStore() *Store {
	return &Store{
		state: domain.NewState(),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Subscribe registers an observer. Observers are notified in subscription order.
// The returned function removes it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// SetPhase replaces the phase.
func (s *Store) SetPhase(phase domain.Phase) {
	s.SwapPhase(phase)
}

// SwapPhase replaces the phase and returns the previous one.
func (s *Store) SwapPhase(phase domain.Phase) domain.Phase {
	var prev domain.Phase
	s.write(func(st *domain.State) {
		prev = st.Phase
		st.Phase = phase
	})
	return prev
}

// MergeValues overwrites the given fields and keeps the others.
func (s *Store) MergeValues(values domain.Values) {
	s.write(func(st *domain.State) {
		for k, v := range values {
			st.Values[k] = v
		}
	})
}

// MergeErrors overwrites the given fields and keeps the others.
// An empty message removes the error.
func (s *Store) MergeErrors(errors domain.Errors) {
	s.write(func(st *domain.State) {
		for k, msg := range errors {
			if msg == "" {
				delete(st.Errors, k)
				continue
			}
			st.Errors[k] = msg
		}
	})
}

// SetAlert replaces the alert.
func (s *Store) SetAlert(alert domain.Alert) {
	s.write(func(st *domain.State) { st.Alert = alert })
}

func (s *Store) write(mutate func(*domain.State)) {
	s.mu.Lock()
	prev := s.state.Snapshot()
	mutate(s.state)
	next := s.state.Snapshot()
	observers := make([]Observer, 0, len(s.observers))
	for _, sub := range s.observers {
		observers = append(observers, sub.fn)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range observers {
		fn(prev, next)
	}
}
