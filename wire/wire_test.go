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

import "testing"

func TestPrimitiveRoundTrip(t *testing.T) {
	buf := NewBuffer()
	buf.PutUword(123456789)
	buf.PutInt32(-42)
	buf.PutFloat32(3.5)
	buf.PutFloat64(2.718281828)
	buf.PutBool(true)
	buf.PutBool(false)
	buf.PutChar('S')
	buf.PutString("hello, eau2")

	c := NewCursor(buf.Bytes())
	if got := c.ReadUword(); got != 123456789 {
		t.Fatalf("uword: got %d", got)
	}
	if got := c.ReadInt32(); got != -42 {
		t.Fatalf("int32: got %d", got)
	}
	if got := c.ReadFloat32(); got != 3.5 {
		t.Fatalf("float32: got %v", got)
	}
	if got := c.ReadFloat64(); got != 2.718281828 {
		t.Fatalf("float64: got %v", got)
	}
	if got := c.ReadBool(); got != true {
		t.Fatalf("bool: got %v", got)
	}
	if got := c.ReadBool(); got != false {
		t.Fatalf("bool: got %v", got)
	}
	if got := c.ReadChar(); got != 'S' {
		t.Fatalf("char: got %v", got)
	}
	if got := c.ReadString(); got != "hello, eau2" {
		t.Fatalf("string: got %q", got)
	}
	if c.Len() != 0 {
		t.Fatalf("expected cursor exhausted, %d bytes left", c.Len())
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	buf := NewBuffer()
	buf.PutUword(7)
	buf.PutUword(8)
	c := NewCursor(buf.Bytes())
	if p := c.PeekUword(); p != 7 {
		t.Fatalf("peek: got %d", p)
	}
	if got := c.ReadUword(); got != 7 {
		t.Fatalf("read after peek: got %d", got)
	}
	if got := c.ReadUword(); got != 8 {
		t.Fatalf("second read: got %d", got)
	}
}

func TestReadPastEndPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading past end")
		}
	}()
	c := NewCursor([]byte{1, 2, 3})
	c.ReadUword()
}

func TestCompressRoundTrip(t *testing.T) {
	p := make([]byte, CompressThreshold*2)
	for i := range p {
		p[i] = byte(i % 7)
	}
	c := Compress(p)
	back, err := Decompress(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(back) != string(p) {
		t.Fatal("decompress mismatch")
	}
}
