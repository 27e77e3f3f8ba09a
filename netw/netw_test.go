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

package netw

import (
	"fmt"
	"testing"

	"github.com/SnellerInc/sneller/message"
)

func TestInProcSendReceive(t *testing.T) {
	cluster := NewInProcCluster(3)
	n0 := cluster.Handle(0)
	n1 := cluster.Handle(1)
	if err := n0.Register(0); err != nil {
		t.Fatal(err)
	}
	if err := n1.Register(1); err != nil {
		t.Fatal(err)
	}

	msg := message.NewStatus(0, 1, "ping")
	if err := n0.Send(msg); err != nil {
		t.Fatal(err)
	}
	got, err := n1.Receive()
	if err != nil {
		t.Fatal(err)
	}
	status, ok := got.(*message.Status)
	if !ok || status.Text != "ping" {
		t.Fatalf("got %#v", got)
	}
}

func TestInProcFIFOPerLink(t *testing.T) {
	cluster := NewInProcCluster(2)
	n0 := cluster.Handle(0)
	n1 := cluster.Handle(1)
	n0.Register(0)
	n1.Register(1)

	for i := 0; i < 5; i++ {
		n0.Send(message.NewStatus(0, 1, fmt.Sprint(i)))
	}
	for i := 0; i < 5; i++ {
		got, err := n1.Receive()
		if err != nil {
			t.Fatal(err)
		}
		if s, ok := got.(*message.Status); !ok || s.Text != fmt.Sprint(i) {
			t.Fatalf("message %d: got %#v, want Status %q", i, got, fmt.Sprint(i))
		}
	}
}
