// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package tablediff compares two tabular store files key by key: key-set
// differences, element-wise equality, and for differing tables the absolute
// and relative difference statistics. A key that cannot be compared is
// reported and skipped; the file comparison always runs to completion.
package tablediff
