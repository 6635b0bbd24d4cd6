// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package store provides directory store implementations: an in-process
// memory store and a PostgreSQL-backed one.
package store

import (
	"context"
	"sync"

	"github.com/driftline/driftline/internal/identity"
)

// MemoryStore keeps the directory snapshot in process memory. A single
// mutex serializes every operation; Update holds it for the whole
// read-modify-write, which makes it the critical section the directory
// invariants rely on.
type MemoryStore struct {
	mu   sync.Mutex
	snap *identity.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: &identity.Snapshot{}}
}

// Get returns a deep copy of the current snapshot.
func (s *MemoryStore) Get(_ context.Context) (*identity.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone(), nil
}

// Set replaces the snapshot with a deep copy of snap.
func (s *MemoryStore) Set(_ context.Context, snap *identity.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}

// Update runs fn against a private copy of the snapshot under the lock and
// installs the copy only if fn succeeds.
func (s *MemoryStore) Update(_ context.Context, fn func(*identity.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.snap = next
	return nil
}
