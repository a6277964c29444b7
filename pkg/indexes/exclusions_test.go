// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package indexes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// fakeBlobIO stores blobs in memory.
type fakeBlobIO struct {
	blobs map[string][]byte
}

func newFakeBlobIO() *fakeBlobIO {
	return &fakeBlobIO{blobs: make(map[string][]byte)}
}

func (f *fakeBlobIO) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tiering.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobIO) Upload(ctx context.Context, key string, data io.Reader) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.blobs[key] = buf
	return nil
}

func TestLoadExclusionsMissingBlob(t *testing.T) {
	list, err := LoadExclusions(context.Background(), newFakeBlobIO())
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
	assert.False(t, list.Contains("anything"))
}

func TestLoadExclusionsRoundTrip(t *testing.T) {
	store := newFakeBlobIO()
	store.blobs[ExclusionsKey] = []byte(`["idx-a","idx-b"]`)

	list, err := LoadExclusions(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, list.Contains("idx-a"))
	assert.True(t, list.Contains("idx-b"))
	assert.False(t, list.Contains("idx-c"))

	list.Add("idx-c")
	require.NoError(t, list.Save(context.Background(), store))
	assert.JSONEq(t, `["idx-a","idx-b","idx-c"]`, string(store.blobs[ExclusionsKey]))
}

func TestLoadExclusionsBadPayload(t *testing.T) {
	store := newFakeBlobIO()
	store.blobs[ExclusionsKey] = []byte(`{"not":"a list"}`)

	_, err := LoadExclusions(context.Background(), store)
	assert.Error(t, err)
}

func TestExclusionListAddRemove(t *testing.T) {
	list := &ExclusionList{seen: map[string]struct{}{}}
	list.Add("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, list.IDs())

	list.Remove("a", "missing")
	assert.Equal(t, []string{"b"}, list.IDs())
	assert.False(t, list.Contains("a"))
}

func TestSaveEmptyListWritesEmptyArray(t *testing.T) {
	store := newFakeBlobIO()
	list := &ExclusionList{seen: map[string]struct{}{}}
	require.NoError(t, list.Save(context.Background(), store))
	assert.Equal(t, "[]", string(store.blobs[ExclusionsKey]))
}

func TestApplyTierChange(t *testing.T) {
	list := &ExclusionList{seen: map[string]struct{}{}}

	// Tagging toward hot excludes the indices from future archive runs.
	list.ApplyTierChange([]string{"idx-a", "idx-b"}, tiering.TierHot)
	assert.Equal(t, []string{"idx-a", "idx-b"}, list.IDs())

	// Tagging toward archive re-includes them.
	list.ApplyTierChange([]string{"idx-a"}, tiering.TierArchive)
	assert.Equal(t, []string{"idx-b"}, list.IDs())
}

func TestIndexIDFromKey(t *testing.T) {
	id, ok := IndexIDFromKey("stellar_data_backup/indices/aella-syslog-1624488492158-/0/data.json")
	require.True(t, ok)
	assert.Equal(t, "aella-syslog-1624488492158-", id)

	_, ok = IndexIDFromKey("stellar_data_backup/stellar_excluded_indices")
	assert.False(t, ok)

	_, ok = IndexIDFromKey("other/prefix/key")
	assert.False(t, ok)
}
