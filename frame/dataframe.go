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

// Package frame implements the local DataFrame: a schema together
// with exactly schema.Width() columns of matching types, assembled
// in memory and operated on with add_row, fill_row, map, filter,
// and pmap.
package frame

import (
	"fmt"

	"github.com/SnellerInc/sneller/table"
)

// DataFrame is a schema together with one column per schema
// entry. All columns have equal length at every observable moment.
type DataFrame struct {
	Schema  *table.Schema
	Columns []table.ColumnView
}

// New returns a DataFrame with columns initialized empty to match schema.
func New(schema *table.Schema) *DataFrame {
	cols := make([]table.ColumnView, schema.Width())
	for i, t := range schema.Types {
		cols[i] = table.NewColumn(t)
	}
	return &DataFrame{Schema: schema.Clone(), Columns: cols}
}

// Like returns a DataFrame with the same schema (types only, zero
// rows) as other but empty columns.
func Like(other *DataFrame) *DataFrame {
	s := other.Schema.Clone()
	s.SetLength(0)
	return New(s)
}

// AddColumn appends a column to the DataFrame. If this is the
// first column and c is non-empty, the schema's logical length is
// grown to match; otherwise c's length must equal the frame's
// current length.
func (df *DataFrame) AddColumn(c table.ColumnView) {
	if len(df.Columns) == 0 {
		df.Columns = append(df.Columns, c)
		df.Schema.AddColumn(c.Type())
		if c.Len() > df.Schema.Length() {
			df.Schema.SetLength(c.Len())
		}
		return
	}
	if c.Len() != df.Schema.Length() {
		panic(fmt.Sprintf("frame.AddColumn: column has %d rows, frame has %d", c.Len(), df.Schema.Length()))
	}
	df.Columns = append(df.Columns, c)
	df.Schema.AddColumn(c.Type())
}

// AddRow appends r's values to each column, honoring missing flags.
func (df *DataFrame) AddRow(r *table.Row) {
	if r.Width() != len(df.Columns) {
		panic(fmt.Sprintf("frame.AddRow: row has %d columns, frame has %d", r.Width(), len(df.Columns)))
	}
	for i, t := range df.Schema.Types {
		if r.IsMissing(i) {
			df.Columns[i].AppendMissing()
			continue
		}
		switch t {
		case table.TypeBool:
			table.AsBool(df.Columns[i]).Append(r.GetBool(i))
		case table.TypeInt:
			table.AsInt(df.Columns[i]).Append(r.GetInt(i))
		case table.TypeFloat:
			table.AsFloat(df.Columns[i]).Append(r.GetFloat(i))
		case table.TypeString:
			table.AsString(df.Columns[i]).Append(r.GetString(i))
		}
	}
	df.Schema.SetLength(df.Schema.Length() + 1)
}

// FillRow populates r from row idx of the frame, including its
// informational index.
func (df *DataFrame) FillRow(idx int, r *table.Row) {
	for i, t := range df.Schema.Types {
		if df.Columns[i].IsMissing(idx) {
			r.SetMissing(i)
			continue
		}
		switch t {
		case table.TypeBool:
			r.SetBool(i, table.AsBool(df.Columns[i]).Get(idx))
		case table.TypeInt:
			r.SetInt(i, table.AsInt(df.Columns[i]).Get(idx))
		case table.TypeFloat:
			r.SetFloat(i, table.AsFloat(df.Columns[i]).Get(idx))
		case table.TypeString:
			r.SetString(i, table.AsString(df.Columns[i]).Get(idx))
		}
	}
	r.SetIndex(idx)
}

// GetBool is a typed accessor for a bool cell. Wrong type is fatal.
func (df *DataFrame) GetBool(col, row int) bool { return table.AsBool(df.Columns[col]).Get(row) }

// GetInt is a typed accessor for an int cell. Wrong type is fatal.
func (df *DataFrame) GetInt(col, row int) int32 { return table.AsInt(df.Columns[col]).Get(row) }

// GetFloat is a typed accessor for a float cell. Wrong type is fatal.
func (df *DataFrame) GetFloat(col, row int) float32 {
	return table.AsFloat(df.Columns[col]).Get(row)
}

// GetString is a typed accessor for a string cell. Wrong type is fatal.
func (df *DataFrame) GetString(col, row int) string {
	return table.AsString(df.Columns[col]).Get(row)
}

// Map iterates rows 0..Length in order, invoking r.Accept(row) each time.
func (df *DataFrame) Map(r table.Rower) {
	row := table.NewRow(df.Schema)
	for i := 0; i < df.Schema.Length(); i++ {
		df.FillRow(i, row)
		r.Accept(row)
	}
}

// Filter behaves like Map, but produces a new DataFrame containing
// exactly the rows for which Accept returned true, in original order.
func (df *DataFrame) Filter(r table.Rower) *DataFrame {
	out := Like(df)
	row := table.NewRow(df.Schema)
	for i := 0; i < df.Schema.Length(); i++ {
		df.FillRow(i, row)
		if r.Accept(row) {
			out.AddRow(row)
		}
	}
	return out
}

// Equal reports whether df and other have matching schemas (by
// type) and equal columns, including missing flags.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if !df.Schema.Equal(other.Schema) {
		return false
	}
	if len(df.Columns) != len(other.Columns) {
		return false
	}
	for i := range df.Columns {
		if !df.Columns[i].Equal(other.Columns[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies the DataFrame.
func (df *DataFrame) Clone() *DataFrame {
	cols := make([]table.ColumnView, len(df.Columns))
	for i, c := range df.Columns {
		cols[i] = c.Clone()
	}
	return &DataFrame{Schema: df.Schema.Clone(), Columns: cols}
}
