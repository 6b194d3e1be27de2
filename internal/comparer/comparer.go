// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package comparer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/refdiff/refdiff/internal/config"
	"github.com/refdiff/refdiff/internal/dirdiff"
	"github.com/refdiff/refdiff/internal/log"
	"github.com/refdiff/refdiff/internal/report"
	"github.com/refdiff/refdiff/internal/scratch"
	"github.com/refdiff/refdiff/internal/snapshot"
	"github.com/refdiff/refdiff/internal/store"
	"github.com/refdiff/refdiff/internal/tablediff"
)

// ErrNoSource is returned before any resource is acquired when neither ref
// names a revision, bucket, or any other concrete source.
var ErrNoSource = errors.New("at least one ref must name a revision or s3 source")

// State tracks a Comparer through its lifecycle.
type State int

const (
	StateCreated State = iota
	StateProvisioned
	StateDiffed
	StateCompared
	StateTornDown
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateProvisioned:
		return "provisioned"
	case StateDiffed:
		return "diffed"
	case StateCompared:
		return "compared"
	case StateTornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// InvalidStateError reports an operation called out of lifecycle order. This
// is a programmer error, not a runtime condition to retry.
type InvalidStateError struct {
	Op    string
	State State
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s called while %s", e.Op, e.State)
}

// Options configures a comparison run. Zero fields fall back to the loaded
// configuration (and its defaults).
type Options struct {
	ComparePath   string
	ScratchPrefix string
	StoreExts     []string
	RepoDir       string
	S3            snapshot.S3API
}

// Comparer runs one comparison of two reference snapshots. It exclusively
// owns its scratch directory; a Comparer must not be shared across
// concurrent runs.
type Comparer struct {
	ref1 snapshot.Source
	ref2 snapshot.Source
	opts Options

	state   State
	scratch *scratch.Dir
	snap1   *snapshot.Snapshot
	snap2   *snapshot.Snapshot
	tree    *dirdiff.Node
	rep     *report.Report
}

// New validates the source pair and builds a Comparer. Both refs naming the
// bare working tree is rejected here, before any temporary directory exists.
func New(ref1, ref2 snapshot.Source, opts Options) (*Comparer, error) {
	if ref1.IsZero() && ref2.IsZero() {
		return nil, ErrNoSource
	}

	if opts.ComparePath == "" {
		opts.ComparePath = config.ComparePath()
	}
	if opts.ScratchPrefix == "" {
		opts.ScratchPrefix = config.ScratchPrefix()
	}
	if len(opts.StoreExts) == 0 {
		opts.StoreExts = config.StoreExtensions()
	}

	return &Comparer{ref1: ref1, ref2: ref2, opts: opts}, nil
}

// Setup acquires the scratch directory and provisions both snapshots. On
// provisioning failure the scratch directory stays behind for Teardown,
// which the caller is expected to defer unconditionally.
func (c *Comparer) Setup(ctx context.Context) error {
	if c.state != StateCreated {
		return &InvalidStateError{Op: "Setup", State: c.state}
	}

	// A retry after a failed provision must not leak the earlier scratch dir.
	if c.scratch != nil {
		_ = c.scratch.Remove()
	}

	dir, err := scratch.New(c.opts.ScratchPrefix)
	if err != nil {
		return fmt.Errorf("acquire scratch: %w", err)
	}
	c.scratch = dir

	prov := &snapshot.Provisioner{
		Scratch:     dir,
		ComparePath: c.opts.ComparePath,
		RepoDir:     c.opts.RepoDir,
		S3:          c.opts.S3,
	}

	if c.snap1, err = prov.Provision(ctx, c.ref1, "ref1_"+c.opts.ComparePath); err != nil {
		return err
	}
	if c.snap2, err = prov.Provision(ctx, c.ref2, "ref2_"+c.opts.ComparePath); err != nil {
		return err
	}

	c.state = StateProvisioned
	return nil
}

// Diff runs the structural comparison of the two snapshot roots.
func (c *Comparer) Diff() (*dirdiff.Node, error) {
	if c.state != StateProvisioned {
		return nil, &InvalidStateError{Op: "Diff", State: c.state}
	}

	tree, err := dirdiff.Diff(c.snap1.Root, c.snap2.Root)
	if err != nil {
		return nil, err
	}

	c.tree = tree
	c.state = StateDiffed
	return tree, nil
}

// CompareStores walks the first snapshot for tabular store files and
// compares each one that also exists at the matching relative path in the
// second snapshot. Stores that fail to open are recorded as skipped; the
// walk always completes.
func (c *Comparer) CompareStores() (*report.Report, error) {
	if c.state != StateDiffed {
		return nil, &InvalidStateError{Op: "CompareStores", State: c.state}
	}

	rep := report.New()

	err := filepath.WalkDir(c.snap1.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || !store.IsStorePath(d.Name(), c.opts.StoreExts) {
			return nil
		}

		rel, err := filepath.Rel(c.snap1.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		other := filepath.Join(c.snap2.Root, filepath.FromSlash(rel))
		if !fileExists(other) {
			// Present on one side only: the structural diff already
			// reported it.
			log.Debugf("store %s absent from ref2, skipping comparison", rel)
			return nil
		}

		res, cerr := tablediff.Compare(path, other)
		if cerr != nil {
			log.Warnf("skipping store %s: %v", rel, cerr)
			rep.AddSkip(rel, cerr)
			return nil
		}
		rep.Add(rel, res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", c.snap1.Root, err)
	}

	c.rep = rep
	c.state = StateCompared
	return rep, nil
}

// Tree returns the structural diff computed by Diff, or nil.
func (c *Comparer) Tree() *dirdiff.Node {
	return c.tree
}

// Report returns the accumulated store comparison report, or nil.
func (c *Comparer) Report() *report.Report {
	return c.rep
}

// Snapshots returns both provisioned snapshots, or nils before Setup.
func (c *Comparer) Snapshots() (ref1, ref2 *snapshot.Snapshot) {
	return c.snap1, c.snap2
}

// Teardown removes the scratch directory. It may be called from any state,
// repeatedly, and before Setup; partial setup failures still tear down
// whatever was acquired.
func (c *Comparer) Teardown() error {
	c.state = StateTornDown
	if c.scratch == nil {
		return nil
	}
	return c.scratch.Remove()
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
