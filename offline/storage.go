// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

// BlobStore is the durable local storage contract the engine persists
// through. Any per-device key/value store with string values satisfies it;
// localstore.Store is the SQLite-backed implementation shipped with this
// module.
//
// Both methods are infallible by contract. Implementations swallow and log
// their own failures: a missing or unreadable value degrades to absent, and
// a failed write (quota, I/O) loses durability for that key but must never
// block the in-memory operation that produced it.
type BlobStore interface {
	// Get returns the stored value for key and whether it exists.
	Get(key string) (value string, ok bool)
	// Set overwrites the stored value for key.
	Set(key, value string)
}
