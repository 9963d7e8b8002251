// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Replayer replays one pending operation against the backend. Each
// Controller registers itself as the replayer for its entity kind.
type Replayer interface {
	Replay(ctx context.Context, op Op) error
}

// Drainer replays the pending operation log against the backend when
// connectivity allows. Triggers: an online transition, a successful online
// fetch, and defensively after a successful write. A re-entrancy guard
// collapses concurrent triggers into a single pass.
//
// Replay is best-effort with partial-failure semantics: each operation is
// attempted in log order, successes are removed, failures are retained for
// the next pass and never abort the batch. No error surfaces from a drain;
// the only visible signal is the pending count it reports.
type Drainer struct {
	queue  *Queue
	conn   Connectivity
	logger *slog.Logger

	// CurrentUser returns the signed-in user id, or false when there is no
	// session. An unauthenticated drain is a no-op.
	currentUser func() (string, bool)

	// onPending, when set, receives the surviving pending count after every
	// pass so the UI layer can render a "not yet synced" badge.
	onPending func(count int)

	draining atomic.Bool

	mu        sync.Mutex
	replayers map[string]Replayer
}

// NewDrainer creates a drainer over the given queue. A nil logger defaults
// to slog.Default().
func NewDrainer(queue *Queue, conn Connectivity, currentUser func() (string, bool), logger *slog.Logger) *Drainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Drainer{
		queue:       queue,
		conn:        conn,
		logger:      logger,
		currentUser: currentUser,
		replayers:   make(map[string]Replayer),
	}
}

// Register installs the replayer for an entity kind. Operations whose kind
// has no registered replayer are retained untouched.
func (d *Drainer) Register(entityKind string, r Replayer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replayers[entityKind] = r
}

// OnPendingCount installs a callback receiving the pending count after each
// drain pass.
func (d *Drainer) OnPendingCount(fn func(count int)) {
	d.onPending = fn
}

// BindMonitor subscribes the drainer to online transitions. Returns the
// cancel function for the subscription.
func (d *Drainer) BindMonitor(ctx context.Context, m *Monitor) (cancel func()) {
	return m.Subscribe(func(online bool) {
		if online {
			d.Drain(ctx)
		}
	})
}

// Drain runs one replay pass and returns the number of operations still
// pending afterwards. It is a no-op (returning the current count) when
// offline, unauthenticated, or when another pass is already running.
func (d *Drainer) Drain(ctx context.Context) int {
	userID, ok := d.currentUser()
	if !ok {
		return 0
	}
	if !d.conn.Online() {
		return d.queue.Count(userID)
	}
	if !d.draining.CompareAndSwap(false, true) {
		return d.queue.Count(userID)
	}
	defer d.draining.Store(false)

	ops := d.queue.List(userID)
	if len(ops) == 0 {
		d.report(0)
		return 0
	}

	replayed := make(map[int64]bool)
	for _, op := range ops {
		d.mu.Lock()
		r := d.replayers[op.EntityKind]
		d.mu.Unlock()
		if r == nil {
			d.logger.Warn("no replayer registered for pending operation",
				"entity", op.EntityKind, "id", op.ID)
			continue
		}
		if err := r.Replay(ctx, op); err != nil {
			// Retained for the next pass. One failure never aborts the batch.
			d.logger.Debug("replay failed, retaining pending operation",
				"entity", op.EntityKind, "id", op.ID, "op", op.Kind, "error", err)
			continue
		}
		replayed[op.Seq] = true
	}

	if len(replayed) > 0 {
		d.queue.Remove(userID, func(op Op) bool {
			return replayed[op.Seq]
		})
	}

	remaining := d.queue.Count(userID)
	d.report(remaining)
	return remaining
}

func (d *Drainer) report(count int) {
	if d.onPending != nil {
		d.onPending(count)
	}
}
