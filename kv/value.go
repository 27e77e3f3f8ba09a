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

package kv

import "github.com/SnellerInc/sneller/wire"

// Value is an opaque byte sequence produced by the serialization
// layer. Transfer of ownership across the network happens by
// serialize-then-reconstruct; within a single process a Value may
// be passed by reference once ownership has been established by
// a Put.
type Value struct {
	bytes []byte
}

// NewValue wraps raw as a Value. The caller must not mutate raw
// after the call, since ownership transfers to the Value.
func NewValue(raw []byte) Value {
	return Value{bytes: raw}
}

// FromSerializable serializes v with enc and wraps the result.
func FromSerializable(v wire.Serializable) Value {
	buf := wire.NewBuffer()
	v.Encode(buf)
	out := make([]byte, buf.Size())
	copy(out, buf.Bytes())
	return Value{bytes: out}
}

// Bytes returns the Value's underlying bytes. Callers that intend
// to retain the slice beyond the current call should Clone first.
func (v Value) Bytes() []byte { return v.bytes }

// Len returns the number of bytes in the value.
func (v Value) Len() int { return len(v.bytes) }

// Clone deep-copies the Value's bytes.
func (v Value) Clone() Value {
	out := make([]byte, len(v.bytes))
	copy(out, v.bytes)
	return Value{bytes: out}
}

// Cursor returns a wire.Cursor over the value's bytes, ready for
// type-specific decoding by the caller's own context.
func (v Value) Cursor() *wire.Cursor {
	return wire.NewCursor(v.bytes)
}
