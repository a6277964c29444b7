// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package transition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

func TestTrackerRefreshRecordsProviderState(t *testing.T) {
	p := newFakeProvider(tiering.Capabilities{RequiresPromote: true})
	p.restoreStates["k1"] = tiering.RestoreTemporaryCopyReady
	p.restoreStates["k2"] = tiering.RestorePending

	tracker := NewRestoreTracker(p)

	state, err := tracker.Refresh(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, tiering.RestoreTemporaryCopyReady, state)
	assert.True(t, tracker.ReadyForPromote("k1"))

	state, err = tracker.Refresh(context.Background(), "k2")
	require.NoError(t, err)
	assert.Equal(t, tiering.RestorePending, state)
	assert.False(t, tracker.ReadyForPromote("k2"))
}

func TestTrackerObservesTransitions(t *testing.T) {
	p := newFakeProvider(tiering.Capabilities{RequiresPromote: true})
	p.restoreStates["k"] = tiering.RestorePending

	tracker := NewRestoreTracker(p)
	_, err := tracker.Refresh(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, tracker.ReadyForPromote("k"))

	// Provider-side truth changed between polls.
	p.mu.Lock()
	p.restoreStates["k"] = tiering.RestoreTemporaryCopyReady
	p.mu.Unlock()

	_, err = tracker.Refresh(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, tracker.ReadyForPromote("k"))

	states := tracker.States()
	assert.Equal(t, tiering.RestoreTemporaryCopyReady, states["k"])
}

func TestTrackerUnknownKeyNotReady(t *testing.T) {
	p := newFakeProvider(tiering.Capabilities{RequiresPromote: true})
	tracker := NewRestoreTracker(p)
	assert.False(t, tracker.ReadyForPromote("never-seen"))
}
