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

import (
	"fmt"

	"github.com/SnellerInc/sneller/internal/chunked"
	"github.com/SnellerInc/sneller/wire"
)

// ColumnView is the dynamic-dispatch view over one of the four
// concrete Column types. It exposes only the capabilities common
// to every element type, plus a polymorphic typed-narrowing
// operation (AsBool, AsInt, AsFloat, AsString) that panics if
// misused, per spec.md's "wrong type is a fatal error" rule.
type ColumnView interface {
	Type() ColType
	Len() int
	IsMissing(i int) bool
	AppendMissing()
	Clone() ColumnView
	Encode(buf *wire.Buffer)
	Equal(other ColumnView) bool

	// Slice returns a new column holding rows [start, end), used by
	// dtable to cut a built column into fixed-size chunks.
	Slice(start, end int) ColumnView
}

// Column is the single generic chunked column shared by all four
// element types: rather than near-duplicate specialized bool/int/
// float/string array types, one generic container parameterized
// over the element type backs every concrete column.
type Column[T comparable] struct {
	tag     ColType
	zero    T
	values  chunked.Array[T]
	missing chunked.Array[bool]
	encode  func(*wire.Buffer, T)
	decode  func(*wire.Cursor) T
}

func newColumn[T comparable](tag ColType, zero T, enc func(*wire.Buffer, T), dec func(*wire.Cursor) T) *Column[T] {
	return &Column[T]{tag: tag, zero: zero, encode: enc, decode: dec}
}

// NewBoolColumn returns an empty bool column.
func NewBoolColumn() *Column[bool] {
	return newColumn(TypeBool, false,
		func(b *wire.Buffer, v bool) { b.PutBool(v) },
		func(c *wire.Cursor) bool { return c.ReadBool() })
}

// NewIntColumn returns an empty 32-bit int column.
func NewIntColumn() *Column[int32] {
	return newColumn(TypeInt, int32(0),
		func(b *wire.Buffer, v int32) { b.PutInt32(v) },
		func(c *wire.Cursor) int32 { return c.ReadInt32() })
}

// NewFloatColumn returns an empty 32-bit float column.
func NewFloatColumn() *Column[float32] {
	return newColumn(TypeFloat, float32(0),
		func(b *wire.Buffer, v float32) { b.PutFloat32(v) },
		func(c *wire.Cursor) float32 { return c.ReadFloat32() })
}

// NewStringColumn returns an empty string column.
func NewStringColumn() *Column[string] {
	return newColumn(TypeString, "",
		func(b *wire.Buffer, v string) { b.PutString(v) },
		func(c *wire.Cursor) string { return c.ReadString() })
}

// NewColumn returns an empty column of the given type tag.
func NewColumn(t ColType) ColumnView {
	switch t {
	case TypeBool:
		return NewBoolColumn()
	case TypeInt:
		return NewIntColumn()
	case TypeFloat:
		return NewFloatColumn()
	case TypeString:
		return NewStringColumn()
	default:
		panic(fmt.Sprintf("table.NewColumn: unknown column type %q", byte(t)))
	}
}

func (c *Column[T]) Type() ColType { return c.tag }
func (c *Column[T]) Len() int      { return c.values.Len() }

func (c *Column[T]) IsMissing(i int) bool { return c.missing.Get(i) }

// Append adds v as a present value.
func (c *Column[T]) Append(v T) {
	c.values.Append(v)
	c.missing.Append(false)
}

// AppendMissing adds a missing cell, writing the type-default
// placeholder so readers may safely read without branching.
func (c *Column[T]) AppendMissing() {
	c.values.Append(c.zero)
	c.missing.Append(true)
}

// Get returns the value at i, or the type default if i is missing.
func (c *Column[T]) Get(i int) T { return c.values.Get(i) }

// Set overwrites the value at i and marks it present.
func (c *Column[T]) Set(i int, v T) {
	c.values.Set(i, v)
	c.missing.Set(i, false)
}

// SetMissing marks i as missing, writing the type-default placeholder.
func (c *Column[T]) SetMissing(i int) {
	c.values.Set(i, c.zero)
	c.missing.Set(i, true)
}

// Clone deep-copies the column, including its strings if T is string.
func (c *Column[T]) Clone() ColumnView {
	return &Column[T]{
		tag:     c.tag,
		zero:    c.zero,
		values:  *c.values.Clone(),
		missing: *c.missing.Clone(),
		encode:  c.encode,
		decode:  c.decode,
	}
}

// Slice returns a fresh column holding a copy of rows [start, end).
func (c *Column[T]) Slice(start, end int) ColumnView {
	out := newColumn(c.tag, c.zero, c.encode, c.decode)
	for i := start; i < end; i++ {
		if c.missing.Get(i) {
			out.AppendMissing()
		} else {
			out.Append(c.values.Get(i))
		}
	}
	return out
}

// Equal reports whether c and other hold the same type, length,
// values, and missing flags.
func (c *Column[T]) Equal(other ColumnView) bool {
	o, ok := other.(*Column[T])
	if !ok || o.tag != c.tag {
		return false
	}
	if !chunked.Equal(&c.missing, &o.missing, func(a, b bool) bool { return a == b }) {
		return false
	}
	return chunked.Equal(&c.values, &o.values, func(a, b T) bool { return a == b })
}

// Encode appends the column's wire encoding:
// [type_tag][length][missing bitmap][values].
func (c *Column[T]) Encode(buf *wire.Buffer) {
	buf.PutChar(byte(c.tag))
	buf.PutUword(wire.Word(c.Len()))
	for i := 0; i < c.Len(); i++ {
		buf.PutBool(c.missing.Get(i))
	}
	for i := 0; i < c.Len(); i++ {
		c.encode(buf, c.values.Get(i))
	}
}

// DecodeColumn reads a ColumnView previously written by
// ColumnView.Encode. The leading type tag determines which
// concrete column type is reconstructed.
func DecodeColumn(c *wire.Cursor) ColumnView {
	tag := ColType(c.ReadChar())
	n := int(c.ReadUword())
	switch tag {
	case TypeBool:
		return decodeInto(c, n, NewBoolColumn())
	case TypeInt:
		return decodeInto(c, n, NewIntColumn())
	case TypeFloat:
		return decodeInto(c, n, NewFloatColumn())
	case TypeString:
		return decodeInto(c, n, NewStringColumn())
	default:
		panic(fmt.Sprintf("table.DecodeColumn: unknown column type %q", byte(tag)))
	}
}

func decodeInto[T comparable](c *wire.Cursor, n int, col *Column[T]) ColumnView {
	missing := make([]bool, n)
	for i := range missing {
		missing[i] = c.ReadBool()
	}
	for i := 0; i < n; i++ {
		v := col.decode(c)
		col.values.Append(v)
		col.missing.Append(missing[i])
	}
	return col
}

// AsBool narrows c to *Column[bool], panicking if c does not hold
// bool values.
func AsBool(c ColumnView) *Column[bool] { return narrow[bool](c) }

// AsInt narrows c to *Column[int32], panicking if c does not hold
// int32 values.
func AsInt(c ColumnView) *Column[int32] { return narrow[int32](c) }

// AsFloat narrows c to *Column[float32], panicking if c does not
// hold float32 values.
func AsFloat(c ColumnView) *Column[float32] { return narrow[float32](c) }

// AsString narrows c to *Column[string], panicking if c does not
// hold string values.
func AsString(c ColumnView) *Column[string] { return narrow[string](c) }

func narrow[T comparable](c ColumnView) *Column[T] {
	typed, ok := c.(*Column[T])
	if !ok {
		panic(fmt.Sprintf("table: cannot narrow column of type %s to the requested type", c.Type()))
	}
	return typed
}
