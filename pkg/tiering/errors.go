// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package tiering

import "errors"

var (
	// Input validation errors

	// ErrInvalidIdentifier is returned for empty or path-unsafe index
	// identifiers. Raised pre-flight, before any network call.
	ErrInvalidIdentifier = errors.New("invalid index identifier")

	// ErrInvalidTier is returned for an unrecognized tier name.
	ErrInvalidTier = errors.New("invalid tier")

	// ErrInvalidRequest is returned for an undispatchable transition request.
	ErrInvalidRequest = errors.New("invalid transition request")

	// Per-object errors

	// ErrObjectNotFound means the object disappeared between list and
	// apply. Benign: logged and skipped, never fatal to the batch.
	ErrObjectNotFound = errors.New("object not found")

	// ErrThrottled is a transient provider rate-limit rejection. Retried
	// with exponential backoff up to a bounded attempt count.
	ErrThrottled = errors.New("throttled by provider")

	// ErrNotReady means a two-phase restore has not produced its
	// temporary copy yet. Expected state, reported rather than failed;
	// the operator re-runs sync later.
	ErrNotReady = errors.New("restore not ready")

	// ErrAlreadyInProgress means a restore was already requested for the
	// object. Benign on re-invocation.
	ErrAlreadyInProgress = errors.New("restore already in progress")

	// Batch-fatal errors

	// ErrPermissionDenied aborts the remaining batch: further calls would
	// uniformly fail.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotSupported is returned when an operation is requested against
	// a provider variant that lacks the capability.
	ErrNotSupported = errors.New("operation not supported by provider")
)

// IsFatal reports whether an error must abort the remaining batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
