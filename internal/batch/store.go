package batch

import (
	"sync"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

// Store owns every batch known to this supervisor instance, shared by the
// dispatcher (writer) and the bus bindings (readers).
type Store struct {
	mu      sync.Mutex
	batches map[string]*Batch
}

// NewStore builds an empty batch store.
func NewStore() *Store {
	return &Store{batches: make(map[string]*Batch)}
}

// StartBatch returns the batch for id, creating it if this is the first
// call for that id. Idempotent: a second call with the same id returns the
// same batch.
func (s *Store) StartBatch(id string) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.batches[id]; ok {
		return b
	}
	b := newBatch(id)
	s.batches[id] = b
	return b
}

// Get returns the batch for id, or NotFound if no batch with that id was
// ever started.
func (s *Store) Get(id string) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Batch id=%s", id)
	}
	return b, nil
}

// Results returns a snapshot of id's results, or NotFound.
func (s *Store) Results(id string) ([]Result, error) {
	b, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return b.Results(), nil
}

// Subscribe returns id's event stream and its cancel function, or
// NotFound.
func (s *Store) Subscribe(id string) (<-chan Event, func(), error) {
	b, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := b.Subscribe()
	return ch, cancel, nil
}
