// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package transition drives tier transitions across a container: it
// streams the listing, filters candidates, applies the per-object
// transition through a bounded worker pool, and aggregates outcomes.
package transition

import (
	"strings"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// Match classifies one listed object against the request filters.
type Match int

const (
	// MatchExcluded means the key hit an excluded prefix (or never
	// matched an included one) and is not part of the batch.
	MatchExcluded Match = iota

	// MatchApply means the object is a transition candidate.
	MatchApply

	// MatchWrongTier means the key matched but its tier differs from the
	// requested source tier. Counted as skipped.
	MatchWrongTier

	// MatchUnknownTier means the listing reported no tier and the request
	// filters on one. Counted as not-ready rather than guessing.
	MatchUnknownTier
)

// Filter evaluates listing entries against prefix and tier constraints.
// Exclusion is checked after inclusion: a key matching both an included
// and an excluded prefix is dropped.
type Filter struct {
	Included   []string
	Excluded   []string
	SourceTier tiering.Tier
	Force      bool
}

// NewFilter builds a filter from a transition request.
func NewFilter(req *tiering.TransitionRequest) *Filter {
	return &Filter{
		Included:   req.IncludedPrefixes,
		Excluded:   req.ExcludedPrefixes,
		SourceTier: req.SourceTier,
		Force:      req.Force,
	}
}

// Classify decides how one object participates in the batch. The listing
// is consumed page by page; nothing is materialized here.
func (f *Filter) Classify(h tiering.ObjectHandle) Match {
	if !hasAnyPrefix(h.Key, f.Included) {
		return MatchExcluded
	}
	if hasAnyPrefix(h.Key, f.Excluded) {
		return MatchExcluded
	}
	if f.Force || f.SourceTier == tiering.TierUnknown {
		return MatchApply
	}
	switch h.Tier {
	case tiering.TierUnknown:
		return MatchUnknownTier
	case f.SourceTier:
		return MatchApply
	default:
		return MatchWrongTier
	}
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
