// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package scratch owns the private temporary directory a comparison run
// materializes its snapshots into. One Dir is owned by exactly one run and
// must not be shared.
package scratch

import (
	"os"
	"path/filepath"

	"github.com/refdiff/refdiff/internal/log"
)

// Dir is a scoped temporary directory. The zero value is unusable; construct
// with New.
type Dir struct {
	root string
}

// New creates a fresh scratch directory using the system temp location and the
// given name prefix.
func New(prefix string) (*Dir, error) {
	root, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, err
	}
	log.Infof("created scratch directory %s", root)
	return &Dir{root: root}, nil
}

// Root returns the absolute path of the scratch directory.
func (d *Dir) Root() string {
	return d.root
}

// Path joins the given elements onto the scratch root.
func (d *Dir) Path(elem ...string) string {
	return filepath.Join(append([]string{d.root}, elem...)...)
}

// Remove deletes the scratch directory and everything under it. It is
// idempotent: removing a never-created or already-removed directory is not an
// error, so teardown can always be deferred unconditionally.
func (d *Dir) Remove() error {
	if d == nil || d.root == "" {
		return nil
	}
	if err := os.RemoveAll(d.root); err != nil {
		return err
	}
	log.Infof("removed scratch directory %s", d.root)
	d.root = ""
	return nil
}
