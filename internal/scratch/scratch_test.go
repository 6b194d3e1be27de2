// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesPrefixedDir(t *testing.T) {
	d, err := New("ref_compare_")
	require.NoError(t, err)
	defer func() { _ = d.Remove() }()

	info, err := os.Stat(d.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, strings.HasPrefix(filepath.Base(d.Root()), "ref_compare_"))
}

func TestPathJoins(t *testing.T) {
	d, err := New("ref_compare_")
	require.NoError(t, err)
	defer func() { _ = d.Remove() }()

	assert.Equal(t, filepath.Join(d.Root(), "ref1_tardis", "a.h5"), d.Path("ref1_tardis", "a.h5"))
}

func TestRemoveIsIdempotent(t *testing.T) {
	d, err := New("ref_compare_")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(d.Path("junk"), []byte("x"), 0o644))
	require.NoError(t, d.Remove())
	_, err = os.Stat(d.Root())
	assert.Error(t, err)

	// Second removal, and removal of a nil Dir, must not fail.
	require.NoError(t, d.Remove())
	var nilDir *Dir
	require.NoError(t, nilDir.Remove())
}
