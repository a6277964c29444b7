// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package tiering defines the common contract for moving blob storage
// objects between the hot and archive tiers across provider backends.
package tiering

import (
	"fmt"
	"strings"
)

// TagTierKey is the object tag written to record the intended tier.
// Provider-side lifecycle rules match on this tag.
const TagTierKey = "StellarBlobTier"

// Tier is a logical storage tier. Providers map it to their native
// storage class or access tier.
type Tier string

const (
	// TierUnknown means the tier was not reported by a listing call.
	TierUnknown Tier = ""

	// TierHot is the immediately accessible, higher-cost tier.
	TierHot Tier = "hot"

	// TierArchive is the low-cost tier requiring restore before read.
	TierArchive Tier = "archive"
)

// ParseTier parses a user-supplied tier name.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hot":
		return TierHot, nil
	case "archive":
		return TierArchive, nil
	default:
		return TierUnknown, fmt.Errorf("%w: unknown tier %q", ErrInvalidTier, s)
	}
}

// Operation is the kind of tier transition applied to matched objects.
type Operation string

const (
	// OpTag writes the tier tag consumed by an external lifecycle policy.
	OpTag Operation = "tag"

	// OpArchive performs an immediate tier mutation to the archive tier.
	// Direct-tier providers only.
	OpArchive Operation = "archive"

	// OpRestore initiates restore of archived objects back to the hot tier.
	OpRestore Operation = "restore"

	// OpSync promotes temporary restored copies to their permanent
	// location. Two-phase restore providers only.
	OpSync Operation = "sync"
)

// RestoreState is the provider-reported restore state of a single object.
// States are polled from the provider, never simulated locally.
type RestoreState int

const (
	// RestoreNotStarted means no restore has been requested.
	RestoreNotStarted RestoreState = iota

	// RestorePending means a restore job is in flight.
	RestorePending

	// RestoreTemporaryCopyReady means the restored copy is staged and
	// ready to be promoted.
	RestoreTemporaryCopyReady

	// RestorePermanentlyPromoted means the object is back on the hot tier.
	RestorePermanentlyPromoted

	// RestoreFailed means the provider reported a failed restore.
	RestoreFailed
)

// String returns the human readable restore state name.
func (s RestoreState) String() string {
	switch s {
	case RestoreNotStarted:
		return "not-started"
	case RestorePending:
		return "pending"
	case RestoreTemporaryCopyReady:
		return "temporary-copy-ready"
	case RestorePermanentlyPromoted:
		return "permanently-promoted"
	case RestoreFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ObjectHandle identifies a single listed object. Handles are transient;
// they are created while paging a listing and forgotten at process exit.
type ObjectHandle struct {
	// Key is the object's full key/name within the container.
	Key string

	// Tier is the tier reported by the listing, or TierUnknown when the
	// listing did not include one.
	Tier Tier
}

// Page is one page of a container listing. NextToken is an explicit
// resume cursor so interrupted listings can be retried without skipping
// or duplicating entries.
type Page struct {
	Objects   []ObjectHandle
	NextToken string
}

// Capabilities declares what a provider variant supports. Callers branch
// on these flags, never on provider identity.
type Capabilities struct {
	// DirectTierChange is true when the provider supports immediate
	// per-object tier mutation.
	DirectTierChange bool

	// RequiresPromote is true when restore is two-phase: the provider
	// restores to a temporary staging copy which must be promoted to
	// become permanent.
	RequiresPromote bool
}

// TransitionRequest describes one batch tier transition invocation.
type TransitionRequest struct {
	// IncludedPrefixes scope the listing. At least one is required.
	IncludedPrefixes []string

	// ExcludedPrefixes drop objects after an included-prefix match.
	ExcludedPrefixes []string

	// SourceTier filters matched objects by their current tier.
	// TierUnknown disables the filter.
	SourceTier Tier

	// DestinationTier is the tier written by Tag/Archive operations.
	DestinationTier Tier

	// Operation selects the transition applied per object.
	Operation Operation

	// Force bypasses the source tier check entirely.
	Force bool

	// RestoreDays is how long a temporary restored copy stays readable.
	RestoreDays int

	// UpdateExclusions enables excluded-indices bookkeeping for tag
	// operations.
	UpdateExclusions bool
}

// Validate rejects requests that cannot be dispatched.
func (r *TransitionRequest) Validate() error {
	if len(r.IncludedPrefixes) == 0 {
		return fmt.Errorf("%w: at least one included prefix is required", ErrInvalidRequest)
	}
	switch r.Operation {
	case OpTag, OpArchive:
		if r.DestinationTier == TierUnknown {
			return fmt.Errorf("%w: %s requires a destination tier", ErrInvalidRequest, r.Operation)
		}
	case OpRestore, OpSync:
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, r.Operation)
	}
	return nil
}

// LifecyclePolicy is a provider-side lifecycle rule, reported read-only so
// operators can verify the rule that consumes the tier tag exists.
type LifecyclePolicy struct {
	ID            string `json:"id"`
	Prefix        string `json:"prefix"`
	Action        string `json:"action"`
	RetentionDays int    `json:"retention_days"`
}
