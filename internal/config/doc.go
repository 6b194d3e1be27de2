// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for refdiff's user
// configuration. The configuration is expected to be a YAML document located
// in the user's configuration directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/refdiff.yaml or $HOME/.config/refdiff.yaml
//   - Windows: %APPDATA%/refdiff/refdiff.yaml
//
// Actual resolution relies on os.UserConfigDir which follows platform
// conventions.
//
// Recognized keys:
//   - compare_path: name of the reference data subpath to compare
//   - scratch_prefix: prefix for the private scratch directory
//   - store_extensions: file extensions treated as tabular stores
//   - colors.*: color overrides for tree and heatmap rendering
package config
