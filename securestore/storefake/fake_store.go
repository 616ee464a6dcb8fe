// Package storefake provides an in-memory securestore.Store for tests.
package storefake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/securestore"
)

// FakeStore is an in-memory securestore.Store. Failure injection fields let
// tests simulate each storage error kind.
type FakeStore struct {
	mu     sync.Mutex
	values map[string][]byte

	// When set, the corresponding operation fails with that error.
	PutErr    error
	GetErr    error
	DeleteErr error
	HasErr    error

	PutCalls    int
	GetCalls    int
	DeleteCalls int
}

var _ securestore.Store = (*FakeStore)(nil)

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string][]byte)}
}

// Put implements securestore.Store.
func (s *FakeStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PutCalls++
	if s.PutErr != nil {
		return s.PutErr
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

// Get implements securestore.Store.
func (s *FakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCalls++
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	value, ok := s.values[key]
	if !ok {
		return nil, securestore.ErrNotFound
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Delete implements securestore.Store.
func (s *FakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.values, key)
	return nil
}

// Has implements securestore.Store.
func (s *FakeStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.HasErr != nil {
		return false, s.HasErr
	}
	_, ok := s.values[key]
	return ok, nil
}

// Len reports how many values the store holds.
func (s *FakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
