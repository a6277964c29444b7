// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package tiering

import (
	"fmt"

	"github.com/google/uuid"
)

// Outcome classifies the result of one object's transition step.
type Outcome int

const (
	// OutcomeSucceeded means the provider call completed.
	OutcomeSucceeded Outcome = iota

	// OutcomeSkipped means the object needed no work (tier mismatch,
	// excluded index, vanished object, restore already requested).
	OutcomeSkipped

	// OutcomeFailed means the call failed after exhausting retries.
	OutcomeFailed

	// OutcomeNotReady means a two-phase restore is still pending, or the
	// object's tier could not be determined. Re-run later.
	OutcomeNotReady
)

// String returns the outcome name used in reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeNotReady:
		return "not-ready"
	default:
		return "unknown"
	}
}

// Failure records one object that ended in OutcomeFailed.
type Failure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Report aggregates per-object outcomes for one invocation. Reports are
// returned to the caller, never persisted; re-invocation re-derives
// everything from provider-side truth.
type Report struct {
	RunID     string    `json:"run_id"`
	Operation Operation `json:"operation"`

	Scanned   int `json:"scanned"`
	Matched   int `json:"matched"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	NotReady  int `json:"not_ready"`

	Failures []Failure `json:"failures,omitempty"`

	// RestoreStates counts the provider-reported restore state of each
	// object a sync batch examined, keyed by state name. Nil for other
	// operations.
	RestoreStates map[string]int `json:"restore_states,omitempty"`

	// Fatal carries the provider-fatal error that aborted the batch,
	// empty when the batch ran to completion.
	Fatal string `json:"fatal,omitempty"`
}

// NewReport creates a report stamped with a fresh run ID.
func NewReport(op Operation) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Operation: op,
	}
}

// Record tallies one object outcome.
func (r *Report) Record(key string, outcome Outcome, err error) {
	switch outcome {
	case OutcomeSucceeded:
		r.Succeeded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeNotReady:
		r.NotReady++
	case OutcomeFailed:
		r.Failed++
		reason := "unknown"
		if err != nil {
			reason = err.Error()
		}
		r.Failures = append(r.Failures, Failure{Key: key, Reason: reason})
	}
}

// Err returns a non-nil error iff the invocation must exit nonzero: a
// provider-fatal error occurred or any object ended failed after retries.
func (r *Report) Err() error {
	if r.Fatal != "" {
		return fmt.Errorf("batch aborted: %s", r.Fatal)
	}
	if r.Failed > 0 {
		return fmt.Errorf("%d of %d matched objects failed", r.Failed, r.Matched)
	}
	return nil
}
