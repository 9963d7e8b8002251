// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"encoding/json"
	"slices"
)

// Entity is any record with a stable client-minted identifier.
type Entity interface {
	EntityID() string
}

// Overlay applies pending operations on top of a base snapshot and returns
// the effective collection the user should see. It is pure: deterministic
// for the same inputs, no hidden state, and the base slice is not modified.
//
// Operations are applied in log order. An upsert replaces the entity in
// place if the id already exists, otherwise inserts it at the head (lists
// are rendered most-recent-first). A delete removes the entity by id
// regardless of prior upserts or of whether the id exists in the base.
// Operations for other entity kinds and upserts with undecodable payloads
// are skipped.
func Overlay[E Entity](entityKind string, base []E, ops []Op) []E {
	out := slices.Clone(base)
	for _, op := range ops {
		if op.EntityKind != entityKind {
			continue
		}
		switch op.Kind {
		case OpDelete:
			out = slices.DeleteFunc(out, func(e E) bool {
				return e.EntityID() == op.ID
			})
		case OpUpsert:
			var e E
			if err := json.Unmarshal(op.Payload, &e); err != nil {
				continue
			}
			idx := slices.IndexFunc(out, func(existing E) bool {
				return existing.EntityID() == op.ID
			})
			if idx >= 0 {
				out[idx] = e
			} else {
				out = slices.Insert(out, 0, e)
			}
		}
	}
	return out
}

// PendingIDs returns the set of entity ids with a queued operation for the
// given entity kind. Used to mark rows in the effective view as not yet
// acknowledged by the backend.
func PendingIDs(entityKind string, ops []Op) map[string]bool {
	ids := make(map[string]bool)
	for _, op := range ops {
		if op.EntityKind == entityKind {
			ids[op.ID] = true
		}
	}
	return ids
}
