// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package transition

import (
	"context"
	"sync"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// RestoreTracker holds the most recent provider-reported restore state
// per object within one invocation. It never persists anything and never
// simulates transitions: every answer comes from re-querying the
// provider at call time.
type RestoreTracker struct {
	provider tiering.Provider

	mu     sync.Mutex
	states map[string]tiering.RestoreState
}

// NewRestoreTracker creates a tracker over the given provider.
func NewRestoreTracker(p tiering.Provider) *RestoreTracker {
	return &RestoreTracker{
		provider: p,
		states:   make(map[string]tiering.RestoreState),
	}
}

// Refresh re-queries the restore state of one object and records it.
func (t *RestoreTracker) Refresh(ctx context.Context, key string) (tiering.RestoreState, error) {
	state, err := t.provider.RestoreStatus(ctx, key)
	if err != nil {
		return tiering.RestoreNotStarted, err
	}
	t.mu.Lock()
	t.states[key] = state
	t.mu.Unlock()
	return state, nil
}

// ReadyForPromote reports whether the last observed state of key allows
// the promote step.
func (t *RestoreTracker) ReadyForPromote(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[key] == tiering.RestoreTemporaryCopyReady
}

// States returns a copy of the last observed state per object.
func (t *RestoreTracker) States() map[string]tiering.RestoreState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]tiering.RestoreState, len(t.states))
	for k, v := range t.states {
		out[k] = v
	}
	return out
}
