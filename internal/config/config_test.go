// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a YAML config to a temp file, points REFDIFF_CFG_FILE
// at it and resets the global Config so the next getter reloads.
func writeTestConfig(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "refdiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("REFDIFF_CFG_FILE", path)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	writeTestConfig(t, "compare_path: atomic\nscratch_prefix: scratch_\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Source)
	assert.Equal(t, "atomic", cfg.Data["compare_path"])
}

func TestGetString(t *testing.T) {
	writeTestConfig(t, "compare_path: atomic\ncolors:\n  heatmap:\n    low: \"#BCF5A9\"\n")

	tests := []struct {
		name    string
		key     string
		def     []string
		want    string
		wantErr bool
	}{
		{name: "top level", key: "compare_path", want: "atomic"},
		{name: "nested", key: "colors.heatmap.low", want: "#BCF5A9"},
		{name: "missing with default", key: "nope", def: []string{"fallback"}, want: "fallback"},
		{name: "missing without default", key: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetString(tt.key, tt.def...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetStringSlice(t *testing.T) {
	writeTestConfig(t, "store_extensions:\n  - .h5\n  - .hdf5\n")

	got, err := GetStringSlice("store_extensions")
	require.NoError(t, err)
	assert.Equal(t, []string{".h5", ".hdf5"}, got)

	got, err = GetStringSlice("missing", []string{".tbl"})
	require.NoError(t, err)
	assert.Equal(t, []string{".tbl"}, got)
}

func TestDomainDefaults(t *testing.T) {
	// No config file at all: helpers fall back to defaults.
	t.Setenv("REFDIFF_CFG_FILE", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })

	assert.Equal(t, DefaultComparePath, ComparePath())
	assert.Equal(t, DefaultScratchPrefix, ScratchPrefix())
	assert.Equal(t, DefaultStoreExtensions, StoreExtensions())
}

func TestStoreExtensionsNormalization(t *testing.T) {
	writeTestConfig(t, "store_extensions:\n  - H5\n  - \" .Hdf5 \"\n  - \"\"\n")

	assert.Equal(t, []string{".h5", ".hdf5"}, StoreExtensions())
}
