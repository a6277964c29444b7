// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package indexes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// ExclusionsKey is the bookkeeping blob holding the JSON array of index
// IDs excluded from archive tagging.
const ExclusionsKey = "stellar_data_backup/stellar_excluded_indices"

var indexKeyRe = regexp.MustCompile("^" + regexp.QuoteMeta(Root) + "/([^/]+)/")

// IndexIDFromKey extracts the index identifier from an object key under
// the index root. Returns false for keys outside the convention.
func IndexIDFromKey(key string) (string, bool) {
	m := indexKeyRe.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// BlobIO is the small-object read/write surface the exclusion list needs.
// tiering.Provider satisfies it.
type BlobIO interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader) error
}

// ExclusionList is the set of index IDs currently excluded from archive
// tagging. The backing blob is a flat JSON string array written by
// earlier tooling; insertion order is preserved for compatibility.
type ExclusionList struct {
	ids  []string
	seen map[string]struct{}
}

// LoadExclusions fetches the exclusion list. A missing bookkeeping blob
// is an empty list, never an error.
func LoadExclusions(ctx context.Context, store BlobIO) (*ExclusionList, error) {
	l := &ExclusionList{seen: make(map[string]struct{})}

	rc, err := store.Download(ctx, ExclusionsKey)
	if err != nil {
		if errors.Is(err, tiering.ErrObjectNotFound) {
			return l, nil
		}
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	defer func() { _ = rc.Close() }()

	var ids []string
	if err := json.NewDecoder(rc).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ExclusionsKey, err)
	}
	for _, id := range ids {
		l.Add(id)
	}
	return l, nil
}

// Contains reports whether an index ID is excluded.
func (l *ExclusionList) Contains(id string) bool {
	_, ok := l.seen[id]
	return ok
}

// Add inserts index IDs, keeping existing order and ignoring duplicates.
func (l *ExclusionList) Add(ids ...string) {
	for _, id := range ids {
		if _, ok := l.seen[id]; ok {
			continue
		}
		l.seen[id] = struct{}{}
		l.ids = append(l.ids, id)
	}
}

// Remove deletes index IDs; unknown IDs are ignored.
func (l *ExclusionList) Remove(ids ...string) {
	for _, id := range ids {
		if _, ok := l.seen[id]; !ok {
			continue
		}
		delete(l.seen, id)
		for i, existing := range l.ids {
			if existing == id {
				l.ids = append(l.ids[:i], l.ids[i+1:]...)
				break
			}
		}
	}
}

// IDs returns a copy of the list in stored order.
func (l *ExclusionList) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Len returns the number of excluded indices.
func (l *ExclusionList) Len() int { return len(l.ids) }

// Save writes the list back to the bookkeeping blob.
func (l *ExclusionList) Save(ctx context.Context, store BlobIO) error {
	data, err := json.Marshal(l.ids)
	if err != nil {
		return fmt.Errorf("encode exclusions: %w", err)
	}
	if l.ids == nil {
		data = []byte("[]")
	}
	if err := store.Upload(ctx, ExclusionsKey, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save exclusions: %w", err)
	}
	return nil
}

// ApplyTierChange updates the list after a tag batch touched the given
// index IDs: tagging toward hot excludes them from future archive runs,
// tagging toward archive re-includes them.
func (l *ExclusionList) ApplyTierChange(ids []string, dst tiering.Tier) {
	switch tiering.Tier(strings.ToLower(string(dst))) {
	case tiering.TierHot:
		l.Add(ids...)
	case tiering.TierArchive:
		l.Remove(ids...)
	}
}
