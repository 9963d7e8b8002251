// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// NetworkError marks a failure caused by connectivity rather than by the
// backend rejecting the request. Operations failing with a NetworkError are
// queued for later replay instead of being surfaced to the user.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a confirmed rejection from the data store (permission
// denied, constraint violation, server fault). It is surfaced to the caller
// and never queued.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend rejected request (status %d): %s", e.StatusCode, e.Message)
}

// ValidationError is a local precondition failure detected before any
// network or queue activity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// Message substrings treated as connectivity failures when an error carries
// no type information. Inherited fallback for transports that return plain
// errors; typed classification via NetworkError is always preferred.
var networkErrorHints = []string{
	"offline",
	"network",
	"failed to fetch",
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"timed out",
	"broken pipe",
	"unreachable",
}

// IsNetworkError reports whether err should be treated as connectivity loss.
// Typed errors (NetworkError, net.Error, context deadline) are checked first;
// untyped errors fall back to message inspection.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var be *BackendError
	if errors.As(err, &be) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range networkErrorHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
