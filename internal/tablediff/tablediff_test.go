// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package tablediff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdiff/refdiff/internal/store"
	"github.com/refdiff/refdiff/internal/table"
)

func writeStore(t *testing.T, dir, name string, tables map[string]*table.Table) string {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := store.Create(path)
	require.NoError(t, err)
	for key, tbl := range tables {
		require.NoError(t, w.Put(key, tbl))
	}
	require.NoError(t, w.Close())
	return path
}

func series(values map[string]float64, order ...string) *table.Table {
	tbl := &table.Table{Columns: []string{"v"}}
	for _, k := range order {
		tbl.Index = append(tbl.Index, k)
		tbl.Data = append(tbl.Data, []float64{values[k]})
	}
	return tbl
}

func TestCompareIdenticalAndDiffering(t *testing.T) {
	dir := t.TempDir()

	t1 := series(map[string]float64{"r0": 1, "r1": 2}, "r0", "r1")
	t2left := series(map[string]float64{"r0": 10, "r1": 20}, "r0", "r1")
	t2right := series(map[string]float64{"r0": 11, "r1": 20}, "r0", "r1")

	left := writeStore(t, dir, "left.h5", map[string]*table.Table{
		"/data/t1": t1,
		"/data/t2": t2left,
	})
	right := writeStore(t, dir, "right.h5", map[string]*table.Table{
		"/data/t1": t1,
		"/data/t2": t2right,
	})

	res, err := Compare(left, right)
	require.NoError(t, err)

	// Key names match on both sides: t1 identical, t2 differs in data.
	assert.Equal(t, 0, res.KeySetDiff)
	assert.Equal(t, 1, res.IdenticalKeys)
	assert.Equal(t, 1, res.DifferingKeys)
	assert.Empty(t, res.KeyErrors)

	// The relative-difference series exists only for the differing key.
	assert.NotContains(t, res.RelDiff, "/data/t1")
	require.Contains(t, res.RelDiff, "/data/t2")

	stats := res.Stats["/data/t2"]
	assert.InDelta(t, 0.5, stats.AbsMean, 1e-12)  // (1+0)/2
	assert.InDelta(t, 1.0, stats.AbsMax, 1e-12)   // |10-11|
	assert.InDelta(t, 0.05, stats.RelMean, 1e-12) // (0.1+0)/2
	assert.InDelta(t, 0.1, stats.RelMax, 1e-12)   // 1/10
}

func TestCompareKeySetDiff(t *testing.T) {
	dir := t.TempDir()
	one := series(map[string]float64{"r0": 1}, "r0")

	left := writeStore(t, dir, "left.h5", map[string]*table.Table{
		"/a": one, "/b": one, "/c": one,
	})
	right := writeStore(t, dir, "right.h5", map[string]*table.Table{
		"/b": one, "/d": one,
	})

	res, err := Compare(left, right)
	require.NoError(t, err)

	// |{a,c} ∪ {d}| = 3 + 2 - 2*1
	assert.Equal(t, 3, res.KeySetDiff)
	assert.Equal(t, res.KeysLeft+res.KeysRight-2*res.IdenticalKeys, res.KeySetDiff)
}

func TestCompareZeroLeftCellsExcluded(t *testing.T) {
	dir := t.TempDir()

	left := writeStore(t, dir, "left.h5", map[string]*table.Table{
		"/t": series(map[string]float64{"r0": 0, "r1": 4}, "r0", "r1"),
	})
	right := writeStore(t, dir, "right.h5", map[string]*table.Table{
		"/t": series(map[string]float64{"r0": 7, "r1": 2}, "r0", "r1"),
	})

	res, err := Compare(left, right)
	require.NoError(t, err)

	rel := res.RelDiff["/t"]
	require.NotNil(t, rel)

	// The zero-left position r0 is excluded entirely: one row, no NaN/Inf.
	require.Equal(t, 1, rel.Rows())
	assert.Equal(t, "r1", rel.Index[0])
	assert.InDelta(t, 0.5, rel.Data[0][0], 1e-12)

	stats := res.Stats["/t"]
	assert.InDelta(t, 0.5, stats.RelMean, 1e-12)
	assert.InDelta(t, 0.5, stats.RelMax, 1e-12)
	assert.InDelta(t, 7.0, stats.AbsMax, 1e-12)
}

func TestCompareShapeMismatchIsKeyError(t *testing.T) {
	dir := t.TempDir()

	left := writeStore(t, dir, "left.h5", map[string]*table.Table{
		"/bad":  series(map[string]float64{"r0": 1, "r1": 2}, "r0", "r1"),
		"/good": series(map[string]float64{"r0": 1}, "r0"),
	})
	right := writeStore(t, dir, "right.h5", map[string]*table.Table{
		"/bad":  series(map[string]float64{"r0": 1}, "r0"),
		"/good": series(map[string]float64{"r0": 1}, "r0"),
	})

	res, err := Compare(left, right)
	require.NoError(t, err)

	// The bad key is reported, the good key still compared.
	require.Len(t, res.KeyErrors, 1)
	assert.Equal(t, "/bad", res.KeyErrors[0].Key)
	assert.Contains(t, res.KeyErrors[0].Msg, "shape mismatch")
	assert.Equal(t, 1, res.IdenticalKeys)
	assert.Equal(t, 0, res.DifferingKeys)
}

func TestCompareMatrixCellLabels(t *testing.T) {
	dir := t.TempDir()

	mk := func(v float64) *table.Table {
		return &table.Table{
			Index:   []string{"r0"},
			Columns: []string{"a", "b"},
			Data:    [][]float64{{2, v}},
		}
	}
	left := writeStore(t, dir, "left.h5", map[string]*table.Table{"/m": mk(3)})
	right := writeStore(t, dir, "right.h5", map[string]*table.Table{"/m": mk(6)})

	res, err := Compare(left, right)
	require.NoError(t, err)

	rel := res.RelDiff["/m"]
	require.NotNil(t, rel)
	assert.Equal(t, []string{"r0:a", "r0:b"}, rel.Index)
}

func TestCompareOpenFailure(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.h5")
	require.NoError(t, os.WriteFile(bogus, []byte("not a store"), 0o644))
	good := writeStore(t, dir, "good.h5", map[string]*table.Table{
		"/t": series(map[string]float64{"r0": 1}, "r0"),
	})

	_, err := Compare(bogus, good)
	var oerr *store.OpenError
	require.ErrorAs(t, err, &oerr)

	_, err = Compare(good, bogus)
	require.ErrorAs(t, err, &oerr)
}
