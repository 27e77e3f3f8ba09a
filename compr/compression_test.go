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

package compr

import "testing"

func TestZstdRoundTrip(t *testing.T) {
	comp := Compression("zstd")
	if _, ok := comp.(zstdCompressor); !ok {
		t.Fatalf("bad compressor for zstd: %T", comp)
	} else if n := comp.Name(); n != "zstd" {
		t.Fatalf("bad compressor name %q", n)
	}

	src := []byte("the quick brown fox jumps over the lazy dog, the quick brown fox jumps over the lazy dog")
	cmp := comp.Compress(src, nil)
	got, err := DecodeZstd(cmp, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(src) {
		t.Fatalf("got %q want %q", got, src)
	}
}

func TestCompressionUnknownName(t *testing.T) {
	if c := Compression("bogus"); c != nil {
		t.Fatalf("expected nil Compressor for unknown name, got %T", c)
	}
}
