// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tablediff

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/refdiff/refdiff/internal/log"
	"github.com/refdiff/refdiff/internal/store"
	"github.com/refdiff/refdiff/internal/table"
)

// KeyError records one key whose tables could not be compared (shape
// mismatch, label mismatch). The key is skipped; remaining keys still run.
type KeyError struct {
	Key string
	Msg string
}

// DiffStats aggregates one differing table's element-wise differences.
// Abs* cover every cell; Rel* cover only cells where the left value is
// nonzero, since the relative difference is undefined elsewhere.
type DiffStats struct {
	AbsMean float64 `json:"abs_mean" yaml:"abs_mean"`
	AbsMax  float64 `json:"abs_max" yaml:"abs_max"`
	RelMean float64 `json:"rel_mean" yaml:"rel_mean"`
	RelMax  float64 `json:"rel_max" yaml:"rel_max"`
}

// Result is the comparison outcome for one pair of same-named store files.
type Result struct {
	File    string `json:"file" yaml:"file"`
	RelPath string `json:"path" yaml:"path"`

	KeysLeft      int `json:"keys_left" yaml:"keys_left"`
	KeysRight     int `json:"keys_right" yaml:"keys_right"`
	KeySetDiff    int `json:"different_keys" yaml:"different_keys"`
	IdenticalKeys int `json:"identical_keys" yaml:"identical_keys"`
	DifferingKeys int `json:"identical_keys_diff_data" yaml:"identical_keys_diff_data"`

	Stats     map[string]DiffStats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	RelDiff   map[string]*table.Table `json:"-" yaml:"-"`
	KeyErrors []KeyError              `json:"key_errors,omitempty" yaml:"key_errors,omitempty"`
}

// Compare opens both paths as tabular stores and compares every key present
// on both sides. Open failures are returned (wrapped *store.OpenError);
// per-key failures are collected in the result. Both stores are closed on
// every path.
func Compare(leftPath, rightPath string) (*Result, error) {
	left, err := store.Open(leftPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = left.Close() }()

	right, err := store.Open(rightPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = right.Close() }()

	res := &Result{
		File:    filepath.Base(leftPath),
		Stats:   map[string]DiffStats{},
		RelDiff: map[string]*table.Table{},
	}

	leftKeys := left.Keys()
	rightKeys := right.Keys()
	res.KeysLeft = len(leftKeys)
	res.KeysRight = len(rightKeys)

	common := intersect(leftKeys, right)
	res.KeySetDiff = len(leftKeys) + len(rightKeys) - 2*len(common)

	for _, key := range common {
		lt, err := left.Table(key)
		if err != nil {
			res.addKeyError(key, err)
			continue
		}
		rt, err := right.Table(key)
		if err != nil {
			res.addKeyError(key, err)
			continue
		}

		if lt.Equal(rt) {
			res.IdenticalKeys++
			continue
		}

		stats, rel, err := diffTables(lt, rt)
		if err != nil {
			res.addKeyError(key, err)
			continue
		}
		res.DifferingKeys++
		res.Stats[key] = stats
		res.RelDiff[key] = rel
	}

	return res, nil
}

// addKeyError records a per-key failure without aborting the file.
func (r *Result) addKeyError(key string, err error) {
	log.Warnf("error comparing key %s: %v", key, err)
	r.KeyErrors = append(r.KeyErrors, KeyError{Key: key, Msg: err.Error()})
}

// intersect returns the sorted keys of left that also exist in right.
func intersect(leftKeys []string, right *store.Store) []string {
	var common []string
	for _, k := range leftKeys {
		if right.Has(k) {
			common = append(common, k)
		}
	}
	sort.Strings(common)
	return common
}

// diffTables computes per-cell absolute and relative differences for two
// tables known to be unequal. The relative difference is |l-r|/|l| and is
// only defined where the left value is nonzero; excluded cells never appear
// in the returned series, so no NaN or Inf is ever stored. The returned
// series is keyed by "index:column" (plain index labels for a series).
func diffTables(lt, rt *table.Table) (DiffStats, *table.Table, error) {
	if !lt.SameShape(rt) {
		return DiffStats{}, nil, fmt.Errorf(
			"shape mismatch: left %dx%d vs right %dx%d",
			lt.Rows(), lt.Cols(), rt.Rows(), rt.Cols())
	}

	var (
		abs    []float64
		rel    []float64
		labels []string
	)

	for i := range lt.Data {
		for j := range lt.Data[i] {
			l, r := lt.Data[i][j], rt.Data[i][j]
			d := math.Abs(l - r)
			abs = append(abs, d)

			if l != 0 {
				rel = append(rel, d/math.Abs(l))
				labels = append(labels, cellLabel(lt, i, j))
			}
		}
	}

	stats := DiffStats{
		AbsMean: meanOf(abs),
		AbsMax:  maxOf(abs),
		RelMean: meanOf(rel),
		RelMax:  maxOf(rel),
	}

	relTable := &table.Table{
		Index:   labels,
		Columns: []string{"relative_difference"},
		Data:    make([][]float64, len(rel)),
	}
	for i, v := range rel {
		relTable.Data[i] = []float64{v}
	}

	return stats, relTable, nil
}

// cellLabel names one cell for the flattened relative-difference series.
func cellLabel(t *table.Table, i, j int) string {
	if t.IsSeries() {
		return t.Index[i]
	}
	return t.Index[i] + ":" + t.Columns[j]
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Max(xs)
}
