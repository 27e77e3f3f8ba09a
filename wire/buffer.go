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

// Package wire implements the length-prefixed binary serialization
// shared by every over-the-wire eau2 type: messages, keys, values,
// schemas, columns, and strings. Composite values are not
// self-describing; the outer context (a field name, a schema slot,
// a message kind) determines how a payload should be decoded.
package wire

import (
	"encoding/binary"
	"math"
)

// Word is the machine-word integer type used for lengths, counts,
// and message header fields. It is fixed at 64 bits so that a
// homogeneous eau2 cluster has one unambiguous wire width; see
// spec.md's endianness non-goal.
type Word = uint64

const wordSize = 8

// byteOrder is the single encoding used cluster-wide. Portability
// across heterogeneous endianness is explicitly out of scope.
var byteOrder = binary.LittleEndian

// Serializable is implemented by every eau2 type that can append
// its own encoding to a Buffer. Serializable values are not
// self-describing: the caller must already know what type to
// expect when decoding.
type Serializable interface {
	Encode(buf *Buffer)
}

// Buffer is a growable byte buffer supporting appends of every
// primitive and composite wire type used by eau2.
type Buffer struct {
	buf []byte
}

// NewBuffer returns an empty Buffer ready for writing.
func NewBuffer() *Buffer { return &Buffer{} }

// Reset empties the buffer so it can be reused.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// Bytes returns the buffer's contents. The slice is only valid
// until the next mutating call.
func (b *Buffer) Bytes() []byte { return b.buf }

// Size returns the number of bytes written so far.
func (b *Buffer) Size() int { return len(b.buf) }

// PutUword appends an unsigned machine word.
func (b *Buffer) PutUword(v Word) {
	var tmp [wordSize]byte
	byteOrder.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// PutInt32 appends a signed 32-bit integer.
func (b *Buffer) PutInt32(v int32) {
	var tmp [4]byte
	byteOrder.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
}

// PutFloat32 appends a 32-bit IEEE-754 float.
func (b *Buffer) PutFloat32(v float32) {
	var tmp [4]byte
	byteOrder.PutUint32(tmp[:], math.Float32bits(v))
	b.buf = append(b.buf, tmp[:]...)
}

// PutFloat64 appends a 64-bit IEEE-754 double.
func (b *Buffer) PutFloat64(v float64) {
	var tmp [8]byte
	byteOrder.PutUint64(tmp[:], math.Float64bits(v))
	b.buf = append(b.buf, tmp[:]...)
}

// PutBool appends a single-byte boolean.
func (b *Buffer) PutBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

// PutChar appends a single byte, used for type tags.
func (b *Buffer) PutChar(v byte) {
	b.buf = append(b.buf, v)
}

// PutRawBytes appends a fixed-length byte array with no length
// prefix; the reader must already know the length.
func (b *Buffer) PutRawBytes(v []byte) {
	b.buf = append(b.buf, v...)
}

// PutString appends a length-prefixed string: a machine word byte
// count followed by exactly that many bytes, no terminator.
func (b *Buffer) PutString(s string) {
	b.PutUword(Word(len(s)))
	b.buf = append(b.buf, s...)
}

// PutSerializable appends v's own encoding.
func (b *Buffer) PutSerializable(v Serializable) {
	v.Encode(b)
}
