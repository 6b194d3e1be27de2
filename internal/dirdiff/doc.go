// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package dirdiff computes and renders the structural difference between two
// snapshot trees: entries only on one side, entries modified on both, and
// common subdirectories recursed into. The diff itself is order-independent;
// rendering imposes lexicographic order.
package dirdiff
