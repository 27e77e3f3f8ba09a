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

package wire

import "math"

// Cursor is a read-only cursor over a byte slice produced by a
// Buffer. Reads past the end of the slice are a fatal error per
// spec.md's error-handling design: they panic rather than return
// an error, since a short buffer means a protocol or storage
// invariant has already been violated.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// Remaining returns the unread tail of the underlying buffer.
func (c *Cursor) Remaining() []byte { return c.buf[c.pos:] }

func (c *Cursor) need(n int) {
	if c.Len() < n {
		panic("wire.Cursor: read past end of buffer")
	}
}

func (c *Cursor) take(n int) []byte {
	c.need(n)
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out
}

// PeekUword returns the next machine word without advancing the
// cursor. The message dispatcher uses this to branch on a leading
// kind tag before committing to a variant-specific decode.
func (c *Cursor) PeekUword() Word {
	c.need(wordSize)
	return Word(byteOrder.Uint64(c.buf[c.pos : c.pos+wordSize]))
}

// ReadUword reads and consumes an unsigned machine word.
func (c *Cursor) ReadUword() Word {
	return Word(byteOrder.Uint64(c.take(wordSize)))
}

// ReadInt32 reads and consumes a signed 32-bit integer.
func (c *Cursor) ReadInt32() int32 {
	return int32(byteOrder.Uint32(c.take(4)))
}

// ReadFloat32 reads and consumes a 32-bit IEEE-754 float.
func (c *Cursor) ReadFloat32() float32 {
	return math.Float32frombits(byteOrder.Uint32(c.take(4)))
}

// ReadFloat64 reads and consumes a 64-bit IEEE-754 double.
func (c *Cursor) ReadFloat64() float64 {
	return math.Float64frombits(byteOrder.Uint64(c.take(8)))
}

// ReadBool reads and consumes a single-byte boolean.
func (c *Cursor) ReadBool() bool {
	return c.take(1)[0] != 0
}

// ReadChar reads and consumes a single byte type tag.
func (c *Cursor) ReadChar() byte {
	return c.take(1)[0]
}

// ReadRawBytes reads and consumes exactly n raw bytes.
func (c *Cursor) ReadRawBytes(n int) []byte {
	// copy out: the returned slice must not alias c.buf past
	// the lifetime of whatever owns the decoded Value.
	raw := c.take(n)
	out := make([]byte, n)
	copy(out, raw)
	return out
}

// ReadString reads and consumes a length-prefixed string.
func (c *Cursor) ReadString() string {
	n := int(c.ReadUword())
	return string(c.take(n))
}
