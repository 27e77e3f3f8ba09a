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
	"testing"

	"github.com/SnellerInc/sneller/wire"
)

func TestMissingReadsTypeDefault(t *testing.T) {
	c := NewFloatColumn()
	c.Append(1.5)
	c.AppendMissing()
	c.Append(2.5)
	if c.IsMissing(0) || !c.IsMissing(1) || c.IsMissing(2) {
		t.Fatal("unexpected missing flags")
	}
	if c.Get(1) != 0 {
		t.Fatalf("missing cell should read as type default, got %v", c.Get(1))
	}
}

func TestColumnEncodeDecodeRoundTrip(t *testing.T) {
	c := NewStringColumn()
	c.Append("alpha")
	c.AppendMissing()
	c.Append("gamma")

	buf := wire.NewBuffer()
	c.Encode(buf)

	decoded := DecodeColumn(wire.NewCursor(buf.Bytes()))
	if !c.Equal(decoded) {
		t.Fatal("decoded column does not equal original")
	}
	str := AsString(decoded)
	if str.Get(0) != "alpha" || str.Get(2) != "gamma" {
		t.Fatal("decoded values wrong")
	}
	if !str.IsMissing(1) || str.Get(1) != "" {
		t.Fatal("decoded missing cell should be empty string")
	}
}

func TestAsWrongTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic narrowing to wrong type")
		}
	}()
	c := NewIntColumn()
	AsString(c)
}

func TestSchemaEncodeDecodeRoundTrip(t *testing.T) {
	s := FromTypes(TypeBool, TypeInt, TypeFloat, TypeString)
	s.SetLength(42)

	buf := wire.NewBuffer()
	s.Encode(buf)
	decoded := DecodeSchema(wire.NewCursor(buf.Bytes()))
	if !s.Equal(decoded) {
		t.Fatal("decoded schema types mismatch")
	}
	if decoded.Length() != 42 {
		t.Fatalf("decoded length = %d, want 42", decoded.Length())
	}
}

func TestRowVisit(t *testing.T) {
	s := FromTypes(TypeInt, TypeString)
	r := NewRow(s)
	r.SetInt(0, 7)
	r.SetString(1, "seven")

	var gotInt int32
	var gotStr string
	f := &captureFielder{onInt: func(v int32) { gotInt = v }, onString: func(v string) { gotStr = v }}
	r.Visit(f)
	if gotInt != 7 || gotStr != "seven" {
		t.Fatalf("visit produced %d %q", gotInt, gotStr)
	}
}

type captureFielder struct {
	onInt    func(int32)
	onString func(string)
}

func (c *captureFielder) AcceptBool(bool)     {}
func (c *captureFielder) AcceptInt(v int32)   { c.onInt(v) }
func (c *captureFielder) AcceptFloat(float32) {}
func (c *captureFielder) AcceptString(v string) {
	c.onString(v)
}
func (c *captureFielder) Done() {}
