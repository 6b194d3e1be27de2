// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package table

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	return &Table{
		Index:   []string{"r0", "r1"},
		Columns: []string{"density", "velocity"},
		Data: [][]float64{
			{1.5, 2.5},
			{0, 4.25},
		},
	}
}

func TestValidate(t *testing.T) {
	tbl := sample()
	require.NoError(t, tbl.Validate())

	tbl.Data = tbl.Data[:1]
	assert.Error(t, tbl.Validate())

	tbl = sample()
	tbl.Data[1] = tbl.Data[1][:1]
	assert.Error(t, tbl.Validate())
}

func TestEqual(t *testing.T) {
	a := sample()
	b := sample()
	assert.True(t, a.Equal(b))

	b.Data[0][1] = 99
	assert.False(t, a.Equal(b))

	// Differing labels are never equal, even with equal values.
	b = sample()
	b.Columns[0] = "temperature"
	assert.False(t, a.Equal(b))

	// NaN in matching positions compares equal.
	a.Data[1][0] = math.NaN()
	c := sample()
	c.Data[1][0] = math.NaN()
	assert.True(t, a.Equal(c))
}

func TestRecordRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	tbl := sample()
	rec, err := tbl.ToRecord(mem)
	require.NoError(t, err)
	defer rec.Release()

	got, err := FromRecord(rec)
	require.NoError(t, err)

	if diff := cmp.Diff(tbl, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRecordRejectsForeignSchema(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "not_an_index", Type: arrow.BinaryTypes.String},
		{Name: "x", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).Append("a")
	b.Field(1).(*array.Float64Builder).Append(1)

	rec := b.NewRecord()
	defer rec.Release()

	_, err := FromRecord(rec)
	assert.Error(t, err)
}

func TestSeries(t *testing.T) {
	s := &Table{Index: []string{"a", "b"}, Columns: []string{"v"}, Data: [][]float64{{1}, {2}}}
	assert.True(t, s.IsSeries())
	assert.False(t, sample().IsSeries())
}
