// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"sync"
	"sync/atomic"
)

// Connectivity reports the current online/offline hint. It is a best-effort
// signal, never a guarantee: a reported "online" can still fail on the next
// actual network call, and callers must fall back to the offline path when
// that happens.
type Connectivity interface {
	Online() bool
}

// Monitor is the default Connectivity implementation. The embedding
// environment (browser bridge, OS notifier, test harness) feeds transitions
// in through SetOnline; subscribers are notified only on actual transitions.
type Monitor struct {
	online atomic.Bool

	mu     sync.Mutex
	nextID int
	subs   map[int]func(online bool)
}

// NewMonitor creates a Monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	m := &Monitor{subs: make(map[int]func(bool))}
	m.online.Store(online)
	return m
}

// Online returns the last reported connectivity state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// SetOnline records a new connectivity state. Subscribers are invoked
// synchronously, but only when the state actually changed.
func (m *Monitor) SetOnline(online bool) {
	if m.online.Swap(online) == online {
		return
	}
	m.mu.Lock()
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers a transition callback and returns a cancel function.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
