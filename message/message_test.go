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

package message

import (
	"testing"

	"github.com/SnellerInc/sneller/kv"
)

func TestRoundTripAllKinds(t *testing.T) {
	key := kv.New("main", 2)
	val := kv.NewValue([]byte("payload"))

	cases := []Message{
		NewStatus(0, 1, "hello"),
		NewRegister(3, "10.0.0.5", 9000),
		NewDirectory(0, 3, []string{"a", "b"}, []int{1, 2}),
		NewGet(1, 2, key),
		NewPut(1, 2, key, val),
		NewReply(NewGet(1, 2, key), val),
		NewKill(0, 1),
	}
	for _, m := range cases {
		raw := Encode(m)
		decoded := Decode(raw)
		if decoded.Header().Kind != m.Header().Kind {
			t.Fatalf("kind mismatch: got %v want %v", decoded.Header().Kind, m.Header().Kind)
		}
	}
}

func TestReplyCorrelatesWithGet(t *testing.T) {
	key := kv.New("ck", 0)
	get := NewGet(1, 0, key)
	reply := NewReply(get, kv.NewValue([]byte("ok")))
	if reply.Hdr.ID != get.Hdr.ID {
		t.Fatal("reply should reuse the request's correlation id")
	}
	if reply.Hdr.Sender != get.Hdr.Target || reply.Hdr.Target != get.Hdr.Sender {
		t.Fatal("reply should route back to the requester")
	}

	raw := Encode(reply)
	decoded := Decode(raw).(*Reply)
	if decoded.Hdr.ID != get.Hdr.ID {
		t.Fatal("decoded reply lost its correlation id")
	}
	if string(decoded.Value.Bytes()) != "ok" {
		t.Fatalf("decoded value = %q", decoded.Value.Bytes())
	}
}

func TestUnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unknown message kind")
		}
	}()
	Decode([]byte{99, 0, 0, 0, 0, 0, 0, 0})
}
