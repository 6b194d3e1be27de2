// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package comparer wires provisioning, the structural diff and the tabular
// store comparison into one run over a private scratch directory. A Comparer
// is a strict state machine; operations called out of order fail fast instead
// of silently doing nothing.
package comparer
