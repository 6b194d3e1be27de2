// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package tui provides the interactive store picker used after a comparison
// run to drill into a single store's differences.
package tui
