// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package store reads and writes tabular store files: one file holding many
// named tables addressed by slash-delimited string keys. Each table is an
// Arrow IPC stream; entries are length-prefixed so a reader can index the
// file without decoding any payload it is not asked for.
package store
