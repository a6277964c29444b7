// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

// Package indexes maps logical index identifiers to the object-key prefix
// convention of the backup store and maintains the excluded-indices
// bookkeeping blob.
package indexes

import (
	"fmt"
	"strings"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// Root is the fixed key prefix under which index data is stored.
const Root = "stellar_data_backup/indices"

// unsafe are characters that must never appear in an index identifier:
// key separators, escapes, wildcards, and whitespace.
const unsafe = "/\\#?%*\x00 \t\r\n"

// Resolve maps index identifiers to their object-key prefixes, one per
// identifier, in input order. Pure and deterministic; performs no I/O.
func Resolve(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no identifiers given", tiering.ErrInvalidIdentifier)
	}
	prefixes := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := validateIdentifier(id); err != nil {
			return nil, err
		}
		prefixes = append(prefixes, fmt.Sprintf("%s/%s/", Root, id))
	}
	return prefixes, nil
}

// SplitList parses a comma-separated identifier list, trimming whitespace
// and dropping empty elements.
func SplitList(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func validateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty identifier", tiering.ErrInvalidIdentifier)
	}
	if strings.ContainsAny(id, unsafe) {
		return fmt.Errorf("%w: %q contains path-unsafe characters", tiering.ErrInvalidIdentifier, id)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q contains a path traversal sequence", tiering.ErrInvalidIdentifier, id)
	}
	return nil
}
