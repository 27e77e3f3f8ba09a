// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package table

import "fmt"

// Row is a one-wide projection of a schema: one value slot per
// column, a missing flag per slot, and a row index kept only for
// informational reporting (it is not part of row identity).
type Row struct {
	schema  *Schema
	vals    []interface{}
	missing []bool
	idx     int
}

// NewRow returns a Row shaped to schema, with every slot missing.
func NewRow(schema *Schema) *Row {
	w := schema.Width()
	r := &Row{
		schema:  schema,
		vals:    make([]interface{}, w),
		missing: make([]bool, w),
	}
	for i := 0; i < w; i++ {
		r.vals[i] = zeroFor(schema.Types[i])
		r.missing[i] = true
	}
	return r
}

func zeroFor(t ColType) interface{} {
	switch t {
	case TypeBool:
		return false
	case TypeInt:
		return int32(0)
	case TypeFloat:
		return float32(0)
	case TypeString:
		return ""
	default:
		panic(fmt.Sprintf("table.Row: unknown column type %q", byte(t)))
	}
}

// Width returns the number of columns in the row.
func (r *Row) Width() int { return len(r.vals) }

// Index returns the row's informational index.
func (r *Row) Index() int { return r.idx }

// SetIndex sets the row's informational index.
func (r *Row) SetIndex(i int) { r.idx = i }

func (r *Row) checkType(col int, want ColType) {
	if r.schema.Types[col] != want {
		panic(fmt.Sprintf("table.Row: column %d is %s, not %s", col, r.schema.Types[col], want))
	}
}

// IsMissing reports whether column col is missing in this row.
func (r *Row) IsMissing(col int) bool { return r.missing[col] }

// SetMissing marks column col as missing, writing its type default.
func (r *Row) SetMissing(col int) {
	r.vals[col] = zeroFor(r.schema.Types[col])
	r.missing[col] = true
}

// SetBool sets a bool column's value. Wrong column type is fatal.
func (r *Row) SetBool(col int, v bool) {
	r.checkType(col, TypeBool)
	r.vals[col] = v
	r.missing[col] = false
}

// GetBool reads a bool column's value. Wrong column type is fatal.
func (r *Row) GetBool(col int) bool {
	r.checkType(col, TypeBool)
	return r.vals[col].(bool)
}

// SetInt sets an int column's value. Wrong column type is fatal.
func (r *Row) SetInt(col int, v int32) {
	r.checkType(col, TypeInt)
	r.vals[col] = v
	r.missing[col] = false
}

// GetInt reads an int column's value. Wrong column type is fatal.
func (r *Row) GetInt(col int) int32 {
	r.checkType(col, TypeInt)
	return r.vals[col].(int32)
}

// SetFloat sets a float column's value. Wrong column type is fatal.
func (r *Row) SetFloat(col int, v float32) {
	r.checkType(col, TypeFloat)
	r.vals[col] = v
	r.missing[col] = false
}

// GetFloat reads a float column's value. Wrong column type is fatal.
func (r *Row) GetFloat(col int) float32 {
	r.checkType(col, TypeFloat)
	return r.vals[col].(float32)
}

// SetString sets a string column's value. Wrong column type is fatal.
func (r *Row) SetString(col int, v string) {
	r.checkType(col, TypeString)
	r.vals[col] = v
	r.missing[col] = false
}

// GetString reads a string column's value. Wrong column type is fatal.
func (r *Row) GetString(col int) string {
	r.checkType(col, TypeString)
	return r.vals[col].(string)
}

// Fielder receives a row's fields in column order. Application
// code implements Fielder to process a row generically without
// caring which concrete DataFrame produced it.
type Fielder interface {
	AcceptBool(v bool)
	AcceptInt(v int32)
	AcceptFloat(v float32)
	AcceptString(v string)
	Done()
}

// Visit yields r's fields, in column order, to f.
func (r *Row) Visit(f Fielder) {
	for col, t := range r.schema.Types {
		switch t {
		case TypeBool:
			f.AcceptBool(r.GetBool(col))
		case TypeInt:
			f.AcceptInt(r.GetInt(col))
		case TypeFloat:
			f.AcceptFloat(r.GetFloat(col))
		case TypeString:
			f.AcceptString(r.GetString(col))
		}
	}
	f.Done()
}

// Rower visits DataFrame rows one at a time. map invokes Accept
// once per row in order; filter keeps the rows for which Accept
// returns true.
type Rower interface {
	Accept(r *Row) bool
}

// ParallelRower is a Rower that additionally supports pmap's
// clone-then-reduce parallel execution: Clone produces an
// independent Rower for each worker, and JoinDelete folds other's
// result into the receiver (the receiver absorbs other, which must
// not be used afterward) and releases other's resources. PMap calls
// JoinDelete right-to-left on adjacent worker pairs, never "every
// worker into the first" - implementations whose reduction isn't
// commutative must fold assuming that order, not an arbitrary one.
type ParallelRower interface {
	Rower
	Clone() ParallelRower
	JoinDelete(other ParallelRower)
}

// Writer produces one row at a time, driving fromVisitor until
// Done returns true.
type Writer interface {
	// Done reports whether the writer has no more rows to produce.
	Done() bool
	// Next populates r with the next row's values.
	Next(r *Row)
}
