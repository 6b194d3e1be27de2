// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package report accumulates per-store comparison results into a queryable
// result set and renders them: summary lines, threshold-colored heatmap
// tables, and JSON/YAML documents with optional path queries.
package report
