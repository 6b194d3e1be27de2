// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirdiff

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"znkr.io/diff/textdiff"

	"github.com/refdiff/refdiff/internal/log"
)

// Symbols used in the rendered tree. Removed/added/modified entries carry a
// marker, common subdirectories a connector.
const (
	symbolRemoved  = "−"
	symbolAdded    = "+"
	symbolModified = "✱"
	symbolSubdir   = "├"
	prefixSubdir   = "│ "
)

// maxPatchBytes bounds the size of files the --patch option will read for a
// unified diff preview.
const maxPatchBytes = 256 * 1024

// renderOptions controls tree rendering.
type renderOptions struct {
	color    bool
	patch    bool
	jsonDiff bool
	jsonSkip []string
}

// RenderOption customizes Render.
type RenderOption func(*renderOptions)

// WithColor enables lipgloss-colored output.
func WithColor() RenderOption {
	return func(o *renderOptions) { o.color = true }
}

// WithPatch appends a unified diff under each modified text file.
func WithPatch() RenderOption {
	return func(o *renderOptions) { o.patch = true }
}

// WithJSONDiff renders a structural diff under each modified .json file,
// skipping the given top-level keys.
func WithJSONDiff(skipKeys []string) RenderOption {
	return func(o *renderOptions) {
		o.jsonDiff = true
		o.jsonSkip = skipKeys
	}
}

// Render writes the human-readable diff tree. Names within a level are
// emitted in ascending lexicographic order: removed entries first, then
// added, then modified, then common subdirectories recursed with a deeper
// prefix. A clean node renders a single "trees are identical" line.
func Render(w io.Writer, n *Node, opts ...RenderOption) {
	var o renderOptions
	for _, opt := range opts {
		opt(&o)
	}

	if n.Clean() {
		fmt.Fprintln(w, "The trees are identical.")
		return
	}

	renderLevel(w, n, "", &o)
}

// styles for the four entry classes, keyed by whether color is enabled.
func styleFor(o *renderOptions, color string) lipgloss.Style {
	if !o.color {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func renderLevel(w io.Writer, n *Node, prefix string, o *renderOptions) {
	removed := styleFor(o, "1") // red
	added := styleFor(o, "2")   // green
	changed := styleFor(o, "3") // yellow
	subdir := styleFor(o, "4")  // blue

	for _, name := range sorted(n.OnlyLeft) {
		fmt.Fprintln(w, removed.Render(prefix+symbolRemoved+" "+describe(filepath.Join(n.Left, name), name)))
	}

	for _, name := range sorted(n.OnlyRight) {
		fmt.Fprintln(w, added.Render(prefix+symbolAdded+" "+describe(filepath.Join(n.Right, name), name)))
	}

	for _, name := range sorted(n.Modified) {
		fmt.Fprintln(w, changed.Render(prefix+symbolModified+" "+name))
		renderModifiedDetail(w, n, name, prefix, o)
	}

	for _, name := range sortedSubdirs(n.Subdirs) {
		fmt.Fprintln(w, subdir.Render(prefix+symbolSubdir+" "+name+"/"))
		renderLevel(w, n.Subdirs[name], prefix+prefixSubdir, o)
	}
}

// describe renders one one-sided entry: directories get a trailing slash,
// files a humanized size.
func describe(path, name string) string {
	info, err := os.Lstat(path)
	if err != nil {
		return name
	}
	if info.IsDir() {
		return name + "/"
	}
	return fmt.Sprintf("%s (%s)", name, humanize.Bytes(uint64(info.Size())))
}

// renderModifiedDetail prints an optional inline diff for a modified file:
// a structural JSON diff for .json files, a unified diff for other text
// files. Binary or oversized files get no detail.
func renderModifiedDetail(w io.Writer, n *Node, name, prefix string, o *renderOptions) {
	if !o.patch && !o.jsonDiff {
		return
	}

	left, right, ok := readBoth(filepath.Join(n.Left, name), filepath.Join(n.Right, name))
	if !ok {
		return
	}

	if o.jsonDiff && strings.HasSuffix(name, ".json") {
		out, err := RenderJSONDiff(left, right, o.jsonSkip)
		if err != nil {
			log.Debugf("json diff %s: %v", name, err)
			return
		}
		indent(w, out, prefix+prefixSubdir)
		return
	}

	if o.patch && utf8.Valid(left) && utf8.Valid(right) {
		indent(w, textdiff.Unified(string(left), string(right)), prefix+prefixSubdir)
	}
}

// readBoth loads both sides of a modified file, bailing out on unreadable or
// oversized content.
func readBoth(lp, rp string) (left, right []byte, ok bool) {
	for _, p := range []string{lp, rp} {
		if info, err := os.Lstat(p); err != nil || !info.Mode().IsRegular() || info.Size() > maxPatchBytes {
			return nil, nil, false
		}
	}

	left, lerr := os.ReadFile(lp)
	right, rerr := os.ReadFile(rp)
	if lerr != nil || rerr != nil {
		return nil, nil, false
	}
	return left, right, true
}

// indent writes each line of s with the given prefix.
func indent(w io.Writer, s, prefix string) {
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		fmt.Fprintln(w, prefix+line)
	}
}
