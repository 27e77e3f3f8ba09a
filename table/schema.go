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

// Package table implements the typed columnar data model: Schema,
// the four concrete Column types (bool/int32/float32/string with
// missing-bitmaps), and the Row/visitor API used by application
// rowers and writers.
package table

import "github.com/SnellerInc/sneller/wire"

// ColType tags one of the four concrete column element types.
type ColType byte

const (
	TypeBool   ColType = 'B'
	TypeInt    ColType = 'I'
	TypeFloat  ColType = 'F'
	TypeString ColType = 'S'
)

func (t ColType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Schema is an ordered sequence of column type tags plus a logical
// row count. For distributed DataFrames it also carries, purely as
// local bookkeeping, the currently-loaded chunk index per column;
// this bookkeeping is never serialized beyond width and height.
type Schema struct {
	Types  []ColType
	length int
	loaded []int // -1 means "unloaded"; local only, see dtable.
}

// NewSchema returns an empty schema with no columns and no rows.
func NewSchema() *Schema {
	return &Schema{}
}

// FromTypes returns a schema with the given column types and a
// row count of zero.
func FromTypes(types ...ColType) *Schema {
	s := &Schema{Types: append([]ColType(nil), types...)}
	s.loaded = make([]int, len(types))
	for i := range s.loaded {
		s.loaded[i] = -1
	}
	return s
}

// Width returns the number of columns.
func (s *Schema) Width() int { return len(s.Types) }

// Length returns the logical row count.
func (s *Schema) Length() int { return s.length }

// SetLength overwrites the logical row count. Used by distributed
// DataFrame factories, which know the total row count up front.
func (s *Schema) SetLength(n int) { s.length = n }

// grow extends the row count to n if it is currently smaller.
func (s *Schema) grow(n int) {
	if n > s.length {
		s.length = n
	}
}

// AddColumn appends a new column type to the schema.
func (s *Schema) AddColumn(t ColType) {
	s.Types = append(s.Types, t)
	s.loaded = append(s.loaded, -1)
}

// LoadedChunk returns the chunk index currently resident for
// column col, or -1 if no chunk has been loaded yet.
func (s *Schema) LoadedChunk(col int) int {
	if col >= len(s.loaded) {
		return -1
	}
	return s.loaded[col]
}

// SetLoadedChunk records that chunk idx is now resident for column col.
func (s *Schema) SetLoadedChunk(col, idx int) {
	for len(s.loaded) <= col {
		s.loaded = append(s.loaded, -1)
	}
	s.loaded[col] = idx
}

// Clone returns a deep copy of s, including its local chunk
// bookkeeping.
func (s *Schema) Clone() *Schema {
	out := &Schema{
		Types:  append([]ColType(nil), s.Types...),
		length: s.length,
		loaded: append([]int(nil), s.loaded...),
	}
	return out
}

// Equal reports whether two schemas describe the same column
// types, in order. Per spec.md, DataFrame equality only considers
// column types, not the logical length.
func (s *Schema) Equal(other *Schema) bool {
	if len(s.Types) != len(other.Types) {
		return false
	}
	for i := range s.Types {
		if s.Types[i] != other.Types[i] {
			return false
		}
	}
	return true
}

// Encode appends the schema's wire encoding: width, height, then
// one type-tag char per column.
func (s *Schema) Encode(buf *wire.Buffer) {
	buf.PutUword(wire.Word(len(s.Types)))
	buf.PutUword(wire.Word(s.length))
	for _, t := range s.Types {
		buf.PutChar(byte(t))
	}
}

// DecodeSchema reads a Schema previously written by Schema.Encode.
func DecodeSchema(c *wire.Cursor) *Schema {
	width := int(c.ReadUword())
	height := int(c.ReadUword())
	types := make([]ColType, width)
	for i := range types {
		types[i] = ColType(c.ReadChar())
	}
	s := FromTypes(types...)
	s.length = height
	return s
}
