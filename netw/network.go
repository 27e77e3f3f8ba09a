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

// Package netw implements the network abstraction: register,
// index, send, and blocking receive, with two interchangeable
// implementations — an in-process queue network for single-process
// clusters, and a TCP-based rendezvous network for real clusters.
package netw

import "github.com/SnellerInc/sneller/message"

// Network is the minimal transport contract every eau2 node relies
// on. Implementations must be safe for concurrent use: Send may be
// called from many goroutines (the servicer, application code, and
// waiter tasks) while Receive runs on the servicer's own goroutine.
type Network interface {
	// Register binds the calling task's identity to index. It
	// must be called exactly once before Send or Receive.
	Register(index int) error

	// Index returns the node index this network instance was
	// registered as.
	Index() int

	// Size returns the number of nodes in the cluster, once known.
	Size() int

	// Send delivers msg to msg.Header().Target. InProc preserves
	// per-link FIFO order (messages sent from the same sender to
	// the same target arrive in send order); TCP does not
	// guarantee it (see TCP.Send).
	Send(msg message.Message) error

	// Receive blocks until a message addressed to this node
	// arrives.
	Receive() (message.Message, error)

	// Close releases any resources held by the network.
	Close() error
}
