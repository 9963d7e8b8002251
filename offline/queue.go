// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// OpKind is the kind of a pending operation.
type OpKind string

const (
	OpUpsert OpKind = "upsert"
	OpDelete OpKind = "delete"
)

// Op is one not-yet-acknowledged write intent awaiting replay against the
// backend. Payload holds the full entity JSON for upserts and is empty for
// deletes.
type Op struct {
	Kind       OpKind          `json:"kind"`
	EntityKind string          `json:"entity_kind"`
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Seq        int64           `json:"seq"`
	QueuedAt   time.Time       `json:"queued_at"`
}

// Queue is the durable, per-user pending operation log. At most one entry is
// retained per (entity kind, id): a new upsert replaces a prior upsert for
// the same id, and a delete replaces anything pending for the same id.
// Replay order across different ids is insertion order, tracked by a
// monotonic per-user sequence that survives restarts.
type Queue struct {
	store  BlobStore
	logger *slog.Logger
	mu     sync.Mutex
}

// NewQueue creates a queue on top of the given store. A nil logger defaults
// to slog.Default().
func NewQueue(store BlobStore, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{store: store, logger: logger}
}

// List returns all pending operations for userID in replay order (oldest
// first). Each call is a fresh read; a missing or corrupt log degrades to
// empty.
func (q *Queue) List(userID string) []Op {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(userID)
}

// Count returns the number of pending operations for userID.
func (q *Queue) Count(userID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.load(userID))
}

// Append inserts op at the tail of the user's log, first removing any
// existing entry for the same (entity kind, id). Seq and QueuedAt are
// assigned here; callers leave them zero.
func (q *Queue) Append(userID string, op Op) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops := q.load(userID)
	var nextSeq int64 = 1
	kept := ops[:0]
	for _, existing := range ops {
		if existing.Seq >= nextSeq {
			nextSeq = existing.Seq + 1
		}
		if existing.EntityKind == op.EntityKind && existing.ID == op.ID {
			continue
		}
		kept = append(kept, existing)
	}

	op.Seq = nextSeq
	op.QueuedAt = time.Now().UTC()
	kept = append(kept, op)
	q.persist(userID, kept)
}

// Remove drops every operation for which drop returns true. Used by the
// drainer to discard successfully replayed entries.
func (q *Queue) Remove(userID string, drop func(Op) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops := q.load(userID)
	kept := ops[:0]
	for _, op := range ops {
		if drop(op) {
			continue
		}
		kept = append(kept, op)
	}
	q.persist(userID, kept)
}

func (q *Queue) load(userID string) []Op {
	raw, ok := q.store.Get(pendingKey(userID))
	if !ok {
		return nil
	}
	var ops []Op
	if err := json.Unmarshal([]byte(raw), &ops); err != nil {
		q.logger.Warn("discarding corrupt pending log", "user", userID, "error", err)
		return nil
	}
	return ops
}

func (q *Queue) persist(userID string, ops []Op) {
	data, err := json.Marshal(ops)
	if err != nil {
		q.logger.Warn("failed to serialize pending log", "user", userID, "error", err)
		return
	}
	q.store.Set(pendingKey(userID), string(data))
}
