// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import "fmt"

// ViewKind selects between a user's personal records and the shared family
// view of the same entity type.
type ViewKind string

const (
	ViewPersonal ViewKind = "personal"
	ViewFamily   ViewKind = "family"
)

// Scope identifies one slice of a collection: whose records, under which
// family (if any), and optionally which month. Every snapshot cache entry and
// every backend fetch is keyed by a Scope.
type Scope struct {
	UserID   string
	FamilyID string   // empty unless View == ViewFamily
	View     ViewKind
	Month    string // "2006-01" format, empty when the entity is not month-sliced
}

// CacheKey builds the snapshot cache key for this scope and entity kind.
// Every dimension is a separate delimited segment so that two different
// scopes can never collide.
func (s Scope) CacheKey(entityKind string) string {
	return fmt.Sprintf("hearthsync:snap:%s:u=%s:f=%s:v=%s:m=%s",
		entityKind, s.UserID, s.FamilyID, s.View, s.Month)
}

func pendingKey(userID string) string {
	return "hearthsync:pending:" + userID
}
