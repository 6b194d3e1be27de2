// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"strings"
)

// SourceKind identifies where a snapshot's bytes come from.
type SourceKind int

const (
	// KindWorktree copies the comparison subpath from the current working
	// tree. This is the "no revision given" case.
	KindWorktree SourceKind = iota

	// KindRevision extracts the comparison subpath from a git revision.
	KindRevision

	// KindS3 downloads the comparison subpath from an s3://bucket/prefix.
	KindS3
)

// String implements fmt.Stringer.
func (k SourceKind) String() string {
	switch k {
	case KindWorktree:
		return "worktree"
	case KindRevision:
		return "revision"
	case KindS3:
		return "s3"
	default:
		return "unknown"
	}
}

// Source is a parsed snapshot source specifier.
type Source struct {
	Kind     SourceKind
	Revision string // KindRevision
	Bucket   string // KindS3
	Prefix   string // KindS3
	Raw      string
}

// IsZero reports whether the source was given at all. An empty specifier
// parses to a worktree source; the orchestrator uses IsZero to enforce that at
// least one side names a revision or bucket.
func (s Source) IsZero() bool {
	return s.Raw == ""
}

// ParseSource turns a ref specifier into a Source. Empty means "current
// working tree", s3://bucket/prefix means object storage, anything else is
// treated as a git revision (hash, tag, branch).
func ParseSource(spec string) (Source, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Source{Kind: KindWorktree}, nil
	}

	if after, ok := strings.CutPrefix(spec, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(after, "/")
		if bucket == "" {
			return Source{}, fmt.Errorf("invalid s3 source %q: missing bucket", spec)
		}
		return Source{
			Kind:   KindS3,
			Bucket: bucket,
			Prefix: strings.TrimSuffix(prefix, "/"),
			Raw:    spec,
		}, nil
	}

	return Source{Kind: KindRevision, Revision: spec, Raw: spec}, nil
}

// ProvisionError reports a failed snapshot materialization. Provisioning
// failures are fatal to the run; the orchestrator unwinds and tears down.
type ProvisionError struct {
	Source Source
	Dest   string
	Err    error
}

// Error implements the error interface.
func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s from %s source %q: %v", e.Dest, e.Source.Kind, e.Source.Raw, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProvisionError) Unwrap() error {
	return e.Err
}
