// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/refdiff/refdiff/internal/tablediff"
)

// Skip records a store file that was discovered but could not be compared.
type Skip struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report is the accumulated result set of one comparison run. Results are
// keyed by the store file's path relative to the snapshot root, so two
// same-named stores in different subdirectories never collide. A Report is
// final once the tree walk completes; it is never mutated afterwards.
type Report struct {
	results map[string]*tablediff.Result
	skipped []Skip
}

// New returns an empty report.
func New() *Report {
	return &Report{results: map[string]*tablediff.Result{}}
}

// Add records one store file's comparison result under its relative path.
func (r *Report) Add(relPath string, res *tablediff.Result) {
	res.RelPath = relPath
	r.results[relPath] = res
}

// AddSkip records a store file that was skipped with the reason.
func (r *Report) AddSkip(relPath string, err error) {
	r.skipped = append(r.skipped, Skip{Path: relPath, Reason: err.Error()})
}

// Get returns the result for one relative path, or nil.
func (r *Report) Get(relPath string) *tablediff.Result {
	return r.results[relPath]
}

// Paths returns the relative paths of all compared stores in ascending
// order.
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.results))
	for p := range r.results {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Skipped returns the skipped files.
func (r *Report) Skipped() []Skip {
	return r.skipped
}

// Len returns the number of compared stores.
func (r *Report) Len() int {
	return len(r.results)
}

// document is the serializable shape of a report.
type document struct {
	Stores  []*tablediff.Result `json:"stores" yaml:"stores"`
	Skipped []Skip              `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// doc builds the ordered serializable view.
func (r *Report) doc() document {
	d := document{Skipped: r.skipped}
	for _, p := range r.Paths() {
		d.Stores = append(d.Stores, r.results[p])
	}
	return d
}

// Encode writes the report as JSON or YAML. For JSON, a non-empty gjson
// query path narrows the output to the matching fragment.
func (r *Report) Encode(w io.Writer, format, query string) error {
	switch format {
	case "yaml":
		return yaml.NewEncoder(w).Encode(r.doc())
	case "json":
		raw, err := json.MarshalIndent(r.doc(), "", "  ")
		if err != nil {
			return err
		}
		if query != "" {
			result := gjson.GetBytes(raw, query)
			if !result.Exists() {
				return fmt.Errorf("query %q matched nothing", query)
			}
			_, err = fmt.Fprintln(w, result.Raw)
			return err
		}
		_, err = w.Write(append(raw, '\n'))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteSummary prints the per-store counters the way the notebook-era tool
// did, one block per compared file.
func (r *Report) WriteSummary(w io.Writer) {
	for _, p := range r.Paths() {
		res := r.results[p]
		fmt.Fprintf(w, "Results for %s:\n", res.File)
		fmt.Fprintf(w, "  path: %s\n", res.RelPath)
		fmt.Fprintf(w, "  total keys in ref1: %d, in ref2: %d\n", res.KeysLeft, res.KeysRight)
		fmt.Fprintf(w, "  keys with different names: %d\n", res.KeySetDiff)
		fmt.Fprintf(w, "  keys with same name but different data: %d\n", res.DifferingKeys)
		fmt.Fprintf(w, "  totally same keys: %d\n", res.IdenticalKeys)
		for _, ke := range res.KeyErrors {
			fmt.Fprintf(w, "  error comparing key %s: %s\n", ke.Key, ke.Msg)
		}
		fmt.Fprintln(w)
	}

	for _, s := range r.skipped {
		fmt.Fprintf(w, "Skipped %s: %s\n", s.Path, s.Reason)
	}
}
