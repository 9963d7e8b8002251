// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
)

// Backend is the data store client for one entity type. Upsert must accept
// caller-supplied ids (idempotent create-or-update keyed by id) so that ids
// minted offline survive replay, and Delete must tolerate ids the backend
// has never seen.
type Backend[E Entity] interface {
	FetchByScope(ctx context.Context, scope Scope) ([]E, error)
	Upsert(ctx context.Context, e E) (E, error)
	Delete(ctx context.Context, id string) error
}

// View is the effective collection shown to the user: the last known server
// snapshot with pending local operations applied on top.
type View[E Entity] struct {
	Items []E
	// Pending marks entity ids with a queued, not-yet-acknowledged write.
	Pending map[string]bool
	// PendingCount is the total queued operation count for the user across
	// all entity kinds.
	PendingCount int
	// FromCache is true when the view was served from the local snapshot
	// without a successful backend fetch.
	FromCache bool
}

// ErrClosed is returned by a controller after Close, preventing stale
// responses from committing state for an unmounted page.
var ErrClosed = errors.New("controller closed")

// Controller orchestrates load and write flows for one entity domain,
// choosing the online or offline code path and feeding everything through
// the overlay so a pending local edit is never hidden by a stale fetch.
//
// Policy, in line with the rest of the engine: connectivity loss and
// network-shaped failures are invisible to the user (silent fallback to
// cache and queue); only confirmed backend rejections surface as errors.
// Writes are optimistic and are not rolled back on a backend rejection; the
// caller decides how to present the rejection.
type Controller[E Entity] struct {
	entityKind string
	backend    Backend[E]
	cache      *SnapshotCache
	queue      *Queue
	conn       Connectivity
	drainer    *Drainer
	validate   *validator.Validate
	logger     *slog.Logger
	closed     atomic.Bool
}

// ControllerDeps bundles the shared collaborators injected into every
// controller. Validate may be nil to skip entity validation.
type ControllerDeps struct {
	Cache    *SnapshotCache
	Queue    *Queue
	Conn     Connectivity
	Drainer  *Drainer
	Validate *validator.Validate
	Logger   *slog.Logger
}

// NewController creates a controller for one entity kind and registers it as
// the drainer's replayer for that kind.
func NewController[E Entity](entityKind string, backend Backend[E], deps ControllerDeps) *Controller[E] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller[E]{
		entityKind: entityKind,
		backend:    backend,
		cache:      deps.Cache,
		queue:      deps.Queue,
		conn:       deps.Conn,
		drainer:    deps.Drainer,
		validate:   deps.Validate,
		logger:     logger,
	}
	if deps.Drainer != nil {
		deps.Drainer.Register(entityKind, c)
	}
	return c
}

// Close marks the controller as unmounted. Subsequent calls return ErrClosed
// so stale responses cannot corrupt page state. In-flight backend calls are
// not aborted.
func (c *Controller[E]) Close() {
	c.closed.Store(true)
}

// Load produces the effective view for a scope.
//
// Offline: cache + overlay, served immediately, no error for the lack of
// connectivity itself. Online: fetch, overwrite cache, overlay still-pending
// ops, then trigger a drain. A network-shaped fetch failure falls back to
// the cache silently; a genuine backend error is returned and the cache is
// left untouched.
func (c *Controller[E]) Load(ctx context.Context, scope Scope) (View[E], error) {
	if c.closed.Load() {
		return View[E]{}, ErrClosed
	}

	ops := c.queue.List(scope.UserID)

	if !c.conn.Online() {
		return c.viewFromCache(scope, ops), nil
	}

	fetched, err := c.backend.FetchByScope(ctx, scope)
	if err != nil {
		if IsNetworkError(err) {
			c.logger.Debug("fetch failed with network-shaped error, serving cache",
				"entity", c.entityKind, "error", err)
			return c.viewFromCache(scope, ops), nil
		}
		return View[E]{}, fmt.Errorf("failed to fetch %s collection: %w", c.entityKind, err)
	}
	if c.closed.Load() {
		return View[E]{}, ErrClosed
	}

	c.cache.Write(scope.CacheKey(c.entityKind), fetched)

	view := View[E]{
		Items:   Overlay(c.entityKind, fetched, ops),
		Pending: PendingIDs(c.entityKind, ops),
	}
	// Connectivity may have returned without a transition event firing, so a
	// successful fetch always triggers a drain.
	if c.drainer != nil {
		view.PendingCount = c.drainer.Drain(ctx)
	} else {
		view.PendingCount = c.queue.Count(scope.UserID)
	}
	return view, nil
}

// Save upserts an entity (create or update; the id decides). The in-memory
// result is optimistic: the returned entity should be shown immediately.
// queued reports whether the write went to the pending log instead of the
// backend.
func (c *Controller[E]) Save(ctx context.Context, scope Scope, e E) (saved E, queued bool, err error) {
	var zero E
	if c.closed.Load() {
		return zero, false, ErrClosed
	}
	if e.EntityID() == "" {
		return zero, false, &ValidationError{Field: "id", Reason: "entity id must be set before saving"}
	}
	if err := c.validateEntity(e); err != nil {
		return zero, false, err
	}

	if !c.conn.Online() {
		c.enqueueUpsert(scope.UserID, e)
		return e, true, nil
	}

	saved, err = c.backend.Upsert(ctx, e)
	if err != nil {
		if IsNetworkError(err) {
			c.logger.Debug("upsert failed with network-shaped error, queueing",
				"entity", c.entityKind, "id", e.EntityID(), "error", err)
			c.enqueueUpsert(scope.UserID, e)
			return e, true, nil
		}
		return zero, false, fmt.Errorf("failed to save %s: %w", c.entityKind, err)
	}

	// Defensive drain: a successful write proves connectivity, so replay
	// anything still queued from an earlier offline stretch.
	if c.drainer != nil {
		c.drainer.Drain(ctx)
	}
	return saved, false, nil
}

// Delete removes an entity by id. queued reports whether the delete went to
// the pending log instead of the backend. Deleting an id the backend has
// never seen is not an error.
func (c *Controller[E]) Delete(ctx context.Context, scope Scope, id string) (queued bool, err error) {
	if c.closed.Load() {
		return false, ErrClosed
	}

	if !c.conn.Online() {
		c.enqueueDelete(scope.UserID, id)
		return true, nil
	}

	if err := c.backend.Delete(ctx, id); err != nil {
		if IsNetworkError(err) {
			c.logger.Debug("delete failed with network-shaped error, queueing",
				"entity", c.entityKind, "id", id, "error", err)
			c.enqueueDelete(scope.UserID, id)
			return true, nil
		}
		return false, fmt.Errorf("failed to delete %s: %w", c.entityKind, err)
	}

	if c.drainer != nil {
		c.drainer.Drain(ctx)
	}
	return false, nil
}

// Replay implements Replayer for the drainer.
func (c *Controller[E]) Replay(ctx context.Context, op Op) error {
	switch op.Kind {
	case OpUpsert:
		var e E
		if err := json.Unmarshal(op.Payload, &e); err != nil {
			return fmt.Errorf("failed to decode queued %s payload: %w", c.entityKind, err)
		}
		if _, err := c.backend.Upsert(ctx, e); err != nil {
			return err
		}
		return nil
	case OpDelete:
		return c.backend.Delete(ctx, op.ID)
	default:
		return fmt.Errorf("unknown pending operation kind %q", op.Kind)
	}
}

func (c *Controller[E]) viewFromCache(scope Scope, ops []Op) View[E] {
	var base []E
	c.cache.ReadInto(scope.CacheKey(c.entityKind), &base)
	return View[E]{
		Items:        Overlay(c.entityKind, base, ops),
		Pending:      PendingIDs(c.entityKind, ops),
		PendingCount: c.queue.Count(scope.UserID),
		FromCache:    true,
	}
}

func (c *Controller[E]) enqueueUpsert(userID string, e E) {
	payload, err := json.Marshal(e)
	if err != nil {
		// Queue persistence is best-effort by contract; the optimistic
		// in-memory update already happened on the caller's side.
		c.logger.Warn("failed to serialize entity for pending log",
			"entity", c.entityKind, "id", e.EntityID(), "error", err)
		return
	}
	c.queue.Append(userID, Op{
		Kind:       OpUpsert,
		EntityKind: c.entityKind,
		ID:         e.EntityID(),
		Payload:    payload,
	})
}

func (c *Controller[E]) enqueueDelete(userID, id string) {
	c.queue.Append(userID, Op{
		Kind:       OpDelete,
		EntityKind: c.entityKind,
		ID:         id,
	})
}

func (c *Controller[E]) validateEntity(e E) error {
	if c.validate == nil {
		return nil
	}
	err := c.validate.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{Field: verrs[0].Field(), Reason: verrs[0].Tag()}
	}
	return &ValidationError{Field: "", Reason: err.Error()}
}
