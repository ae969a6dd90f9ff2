package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
)

// Store implements ports.RecipientStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*ports.Record
	mu   sync.RWMutex
}

// Option configures the Store.
type Option func(*Store)

// WithSeed preloads records.
func WithSeed(records ...*ports.Record) Option {
	return func(s *Store) {
		for _, rec := range records {
			s.data[rec.ID] = rec.Clone()
		}
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]*ports.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of record.
func (s *Store) Save(ctx context.Context, record *ports.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("memory store: record id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[record.ID] = record.Clone()
	return nil
}

// Load returns a copy so callers can't mutate the stored record by pointer.
func (s *Store) Load(ctx context.Context, recipientID string) (*ports.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[recipientID]
	if !ok {
		return nil, domain.ErrRecipientNotFound
	}
	return rec.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, recipientID)
	return nil
}

// List returns the stored ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
