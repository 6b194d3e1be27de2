// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package table holds the in-memory model for one named table inside a
// tabular store: labeled rows, named float64 columns, and conversion to and
// from Arrow records for the wire format.
package table

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// indexField is the reserved column name carrying row labels in the Arrow
// representation.
const indexField = "__index__"

// Table is a labeled numeric table. Data is row-major:
// Data[i][j] is the value at row Index[i], column Columns[j]. A series is a
// table with a single column.
type Table struct {
	Index   []string
	Columns []string
	Data    [][]float64
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return len(t.Index) }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.Columns) }

// IsSeries reports whether the table has exactly one column.
func (t *Table) IsSeries() bool { return len(t.Columns) == 1 }

// Validate checks the shape invariants.
func (t *Table) Validate() error {
	if len(t.Data) != len(t.Index) {
		return fmt.Errorf("table has %d rows of data for %d index labels", len(t.Data), len(t.Index))
	}
	for i, row := range t.Data {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// SameShape reports whether two tables have identical index and column
// labels in identical order.
func (t *Table) SameShape(o *Table) bool {
	if len(t.Index) != len(o.Index) || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i := range t.Index {
		if t.Index[i] != o.Index[i] {
			return false
		}
	}
	for j := range t.Columns {
		if t.Columns[j] != o.Columns[j] {
			return false
		}
	}
	return true
}

// Equal reports element-wise equality: same labels, same values. NaN values
// compare equal to NaN in the same position, matching how stored missing
// values round-trip.
func (t *Table) Equal(o *Table) bool {
	if !t.SameShape(o) {
		return false
	}
	for i := range t.Data {
		for j := range t.Data[i] {
			a, b := t.Data[i][j], o.Data[i][j]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				return false
			}
		}
	}
	return true
}

// ToRecord converts the table to an Arrow record with a string index column
// followed by one float64 field per column. The caller owns the returned
// record and must Release it.
func (t *Table) ToRecord(mem memory.Allocator) (arrow.Record, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, 0, len(t.Columns)+1)
	fields = append(fields, arrow.Field{Name: indexField, Type: arrow.BinaryTypes.String})
	for _, c := range t.Columns {
		fields = append(fields, arrow.Field{Name: c, Type: arrow.PrimitiveTypes.Float64})
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	idx := b.Field(0).(*array.StringBuilder)
	for _, label := range t.Index {
		idx.Append(label)
	}
	for j := range t.Columns {
		col := b.Field(j + 1).(*array.Float64Builder)
		for i := range t.Index {
			col.Append(t.Data[i][j])
		}
	}

	return b.NewRecord(), nil
}

// FromRecord converts an Arrow record produced by ToRecord back into a
// Table. The record is not retained.
func FromRecord(rec arrow.Record) (*Table, error) {
	schema := rec.Schema()
	if schema.NumFields() < 1 || schema.Field(0).Name != indexField {
		return nil, fmt.Errorf("record is missing the %s field", indexField)
	}

	idxCol, ok := rec.Column(0).(*array.String)
	if !ok {
		return nil, fmt.Errorf("%s field is %s, want string", indexField, rec.Column(0).DataType())
	}

	rows := int(rec.NumRows())
	t := &Table{
		Index:   make([]string, rows),
		Columns: make([]string, 0, schema.NumFields()-1),
		Data:    make([][]float64, rows),
	}
	for i := 0; i < rows; i++ {
		t.Index[i] = idxCol.Value(i)
		t.Data[i] = make([]float64, schema.NumFields()-1)
	}

	for f := 1; f < schema.NumFields(); f++ {
		col, ok := rec.Column(f).(*array.Float64)
		if !ok {
			return nil, fmt.Errorf("column %s is %s, want float64", schema.Field(f).Name, rec.Column(f).DataType())
		}
		t.Columns = append(t.Columns, schema.Field(f).Name)
		for i := 0; i < rows; i++ {
			t.Data[i][f-1] = col.Value(i)
		}
	}

	return t, nil
}
