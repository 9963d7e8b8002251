// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitorInitialState(t *testing.T) {
	require.True(t, NewMonitor(true).Online())
	require.False(t, NewMonitor(false).Online())
}

func TestMonitorNotifiesOnTransitionOnly(t *testing.T) {
	m := NewMonitor(false)

	var events []bool
	m.Subscribe(func(online bool) { events = append(events, online) })

	m.SetOnline(false) // no transition
	m.SetOnline(true)
	m.SetOnline(true) // no transition
	m.SetOnline(false)

	require.Equal(t, []bool{true, false}, events)
}

func TestMonitorSubscriptionCancel(t *testing.T) {
	m := NewMonitor(false)

	calls := 0
	cancel := m.Subscribe(func(bool) { calls++ })

	m.SetOnline(true)
	cancel()
	m.SetOnline(false)

	require.Equal(t, 1, calls)
}
