// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"encoding/json"
	"log/slog"
)

// SnapshotCache stores the last successfully fetched server collection per
// (entity kind, scope). Snapshots are overwritten wholesale on every
// successful online fetch and are never mutated by local writes; pending
// local edits live only in the Queue and are applied on read via Overlay.
type SnapshotCache struct {
	store  BlobStore
	logger *slog.Logger
}

// NewSnapshotCache creates a cache on top of the given store. A nil logger
// defaults to slog.Default().
func NewSnapshotCache(store BlobStore, logger *slog.Logger) *SnapshotCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotCache{store: store, logger: logger}
}

// Read returns the stored collection for key as raw JSON. A missing or
// corrupt entry degrades to an empty collection, never an error.
func (c *SnapshotCache) Read(key string) json.RawMessage {
	raw, ok := c.store.Get(key)
	if !ok {
		return json.RawMessage("[]")
	}
	if !json.Valid([]byte(raw)) {
		c.logger.Warn("discarding corrupt snapshot entry", "key", key)
		return json.RawMessage("[]")
	}
	return json.RawMessage(raw)
}

// Write overwrites the stored collection for key. Serialization failures are
// swallowed: caching is best-effort and must never block the operation that
// produced the collection.
func (c *SnapshotCache) Write(key string, collection any) {
	data, err := json.Marshal(collection)
	if err != nil {
		c.logger.Warn("failed to serialize snapshot, skipping cache write", "key", key, "error", err)
		return
	}
	c.store.Set(key, string(data))
}

// ReadInto decodes the stored collection for key into dst (a pointer to a
// slice). A missing, corrupt, or mistyped entry leaves dst empty.
func (c *SnapshotCache) ReadInto(key string, dst any) {
	raw := c.Read(key)
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("snapshot entry does not match expected shape", "key", key, "error", err)
	}
}
