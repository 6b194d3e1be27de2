// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package snapshot materializes one copy of the reference data subpath into
// the scratch directory, from a git revision, the current working tree, or an
// S3 prefix. Snapshots are read-only once provisioned; the scratch package
// owns their lifetime.
package snapshot
