// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"context"
	"sort"
	"sync"
)

// memStore is an in-memory BlobStore for tests. failWrites simulates a
// storage layer that has lost the ability to persist (quota, I/O).
type memStore struct {
	mu         sync.Mutex
	data       map[string]string
	failWrites bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return
	}
	s.data[key] = value
}

// item is the minimal entity used by engine tests.
type item struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Value int    `json:"value"`
}

func (i item) EntityID() string { return i.ID }

// fakeBackend is a scriptable in-memory Backend[item]. Specific operations
// can be made to fail, either with network-shaped or backend-shaped errors.
type fakeBackend struct {
	mu          sync.Mutex
	rows        map[string]item
	fetchErr    error
	upsertErr   map[string]error // keyed by entity id
	deleteErr   map[string]error
	fetchCalls  int
	upsertCalls int
	deleteCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		rows:      make(map[string]item),
		upsertErr: make(map[string]error),
		deleteErr: make(map[string]error),
	}
}

func (b *fakeBackend) FetchByScope(_ context.Context, _ Scope) ([]item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchCalls++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	items := make([]item, 0, len(b.rows))
	for _, it := range b.rows {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (b *fakeBackend) Upsert(_ context.Context, e item) (item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.upsertCalls++
	if err := b.upsertErr[e.ID]; err != nil {
		return item{}, err
	}
	b.rows[e.ID] = e
	return e, nil
}

func (b *fakeBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteCalls++
	if err := b.deleteErr[id]; err != nil {
		return err
	}
	// Deleting an id the backend has never seen is not an error.
	delete(b.rows, id)
	return nil
}

func (b *fakeBackend) row(id string) (item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.rows[id]
	return it, ok
}

func userFunc(id string) func() (string, bool) {
	return func() (string, bool) { return id, id != "" }
}
