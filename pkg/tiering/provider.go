// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package tiering

import (
	"context"
	"io"
)

// Provider is the capability interface over a storage backend. Two
// variants implement it: a direct-tier provider that mutates object tiers
// immediately, and a tag-and-policy provider whose archive transitions are
// driven by an external lifecycle rule.
//
// Implementations map their native errors onto the package sentinel
// errors (ErrObjectNotFound, ErrThrottled, ErrPermissionDenied, ...) so
// callers never inspect provider-specific failures.
type Provider interface {
	// Capabilities declares which operations the variant supports.
	Capabilities() Capabilities

	// ListPage fetches one page of the container listing under prefix.
	// An empty token starts from the beginning; the returned page carries
	// the cursor for the next call. Pages preserve provider order.
	ListPage(ctx context.Context, prefix, token string) (*Page, error)

	// GetTier fetches the current tier of a single object. Used when the
	// listing did not report one.
	GetTier(ctx context.Context, key string) (Tier, error)

	// SetTag writes the tier tag on an object. Re-applying the same tag
	// is a benign overwrite, never an error.
	SetTag(ctx context.Context, key string, tier Tier) error

	// SetTier mutates the object's tier immediately. Returns
	// ErrNotSupported on variants without DirectTierChange.
	SetTier(ctx context.Context, key string, tier Tier) error

	// StartRestore initiates restore of an archived object. On two-phase
	// variants this produces a temporary copy readable for days days.
	StartRestore(ctx context.Context, key string, days int) error

	// RestoreStatus re-queries the provider-reported restore state.
	RestoreStatus(ctx context.Context, key string) (RestoreState, error)

	// Promote copies a temporary restored object to its permanent
	// location. Returns ErrNotSupported on variants without
	// RequiresPromote, ErrNotReady while the restore is still pending.
	Promote(ctx context.Context, key string) error

	// Download reads a small bookkeeping object.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Upload writes a small bookkeeping object.
	Upload(ctx context.Context, key string, data io.Reader) error
}

// PolicyViewer is implemented by providers that can report the
// provider-side lifecycle rules consuming the tier tag.
type PolicyViewer interface {
	LifecyclePolicies(ctx context.Context) ([]LifecyclePolicy, error)
}
