// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirdiff

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Node is one directory level's comparison result. OnlyLeft holds names
// present in the left tree only (removed), OnlyRight names present in the
// right tree only (added), Modified names present on both sides with
// differing content or mismatched entry type. Subdirs maps common
// subdirectory names to their child nodes. The four key sets are mutually
// exclusive within a level.
type Node struct {
	Left      string
	Right     string
	OnlyLeft  map[string]struct{}
	OnlyRight map[string]struct{}
	Modified  map[string]struct{}
	Subdirs   map[string]*Node
}

// Clean reports whether the node and all of its descendants show no
// differences.
func (n *Node) Clean() bool {
	if len(n.OnlyLeft) > 0 || len(n.OnlyRight) > 0 || len(n.Modified) > 0 {
		return false
	}
	for _, sub := range n.Subdirs {
		if !sub.Clean() {
			return false
		}
	}
	return true
}

// Diff recursively compares two directory trees. Entries are matched by exact
// name; same-name files are compared by byte content, same-name directories
// recurse, and a file/directory type mismatch is classified as modified
// rather than an error. Symlinks are compared by target string and never
// followed, so link cycles cannot recurse. The trees must not be mutated
// during the call.
func Diff(leftRoot, rightRoot string) (*Node, error) {
	left, err := listDir(leftRoot)
	if err != nil {
		return nil, err
	}
	right, err := listDir(rightRoot)
	if err != nil {
		return nil, err
	}

	node := &Node{
		Left:      leftRoot,
		Right:     rightRoot,
		OnlyLeft:  map[string]struct{}{},
		OnlyRight: map[string]struct{}{},
		Modified:  map[string]struct{}{},
		Subdirs:   map[string]*Node{},
	}

	for name := range left {
		if _, ok := right[name]; !ok {
			node.OnlyLeft[name] = struct{}{}
		}
	}
	for name := range right {
		if _, ok := left[name]; !ok {
			node.OnlyRight[name] = struct{}{}
		}
	}

	for name, le := range left {
		re, ok := right[name]
		if !ok {
			continue
		}

		lp := filepath.Join(leftRoot, name)
		rp := filepath.Join(rightRoot, name)

		switch {
		case le.IsDir() && re.IsDir():
			sub, err := Diff(lp, rp)
			if err != nil {
				return nil, err
			}
			node.Subdirs[name] = sub
		case le.IsDir() != re.IsDir():
			// Type mismatch: one side replaced a file with a directory.
			node.Modified[name] = struct{}{}
		default:
			same, err := entriesEqual(lp, rp, le, re)
			if err != nil {
				return nil, err
			}
			if !same {
				node.Modified[name] = struct{}{}
			}
		}
	}

	return node, nil
}

// listDir returns the directory's entries keyed by name.
func listDir(dir string) (map[string]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	m := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		m[e.Name()] = e
	}
	return m, nil
}

// entriesEqual compares two non-directory entries of the same name. Two
// symlinks are equal when their targets match; a symlink never equals a
// regular file; regular files are compared by content.
func entriesEqual(lp, rp string, le, re os.DirEntry) (bool, error) {
	lLink := le.Type()&os.ModeSymlink != 0
	rLink := re.Type()&os.ModeSymlink != 0

	if lLink != rLink {
		return false, nil
	}
	if lLink {
		lt, err := os.Readlink(lp)
		if err != nil {
			return false, err
		}
		rt, err := os.Readlink(rp)
		if err != nil {
			return false, err
		}
		return lt == rt, nil
	}

	return filesEqual(lp, rp)
}

// filesEqual reports whether two regular files have identical byte content.
// Sizes are checked first so same-length files are the only ones read.
func filesEqual(lp, rp string) (bool, error) {
	li, err := os.Lstat(lp)
	if err != nil {
		return false, err
	}
	ri, err := os.Lstat(rp)
	if err != nil {
		return false, err
	}
	if li.Size() != ri.Size() {
		return false, nil
	}

	lf, err := os.Open(lp)
	if err != nil {
		return false, err
	}
	defer func() { _ = lf.Close() }()
	rf, err := os.Open(rp)
	if err != nil {
		return false, err
	}
	defer func() { _ = rf.Close() }()

	lbuf := make([]byte, 64*1024)
	rbuf := make([]byte, 64*1024)
	for {
		ln, lerr := io.ReadFull(lf, lbuf)
		rn, rerr := io.ReadFull(rf, rbuf)
		if !bytes.Equal(lbuf[:ln], rbuf[:rn]) {
			return false, nil
		}
		if lerr == io.EOF || lerr == io.ErrUnexpectedEOF {
			return rerr == io.EOF || rerr == io.ErrUnexpectedEOF, nil
		}
		if lerr != nil {
			return false, lerr
		}
		if rerr != nil {
			return false, rerr
		}
	}
}

// sorted returns the set's names in ascending lexicographic order.
func sorted(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedSubdirs returns the subdirectory names in ascending order.
func sortedSubdirs(subdirs map[string]*Node) []string {
	names := make([]string, 0, len(subdirs))
	for name := range subdirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
