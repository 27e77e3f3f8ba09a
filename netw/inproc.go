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
	"errors"
	"fmt"
	"sync"

	"github.com/SnellerInc/sneller/message"
)

// InProcCluster is the shared rendezvous point for a set of
// InProc network handles living in a single process: one queue
// per node index, exactly the "-pseudo" network mode of spec.md §6.
type InProcCluster struct {
	mu     sync.Mutex
	queues map[int]chan message.Message
	size   int
}

// NewInProcCluster returns a cluster sized for n nodes.
func NewInProcCluster(n int) *InProcCluster {
	c := &InProcCluster{
		queues: make(map[int]chan message.Message, n),
		size:   n,
	}
	for i := 0; i < n; i++ {
		c.queues[i] = make(chan message.Message, 64)
	}
	return c
}

// Handle returns a Network bound to node index, backed by this cluster.
func (c *InProcCluster) Handle(index int) *InProc {
	return &InProc{cluster: c, index: -1, wantIndex: index}
}

// InProc is a Network implementation backed by one in-process FIFO
// queue per node index; Send pushes onto the target's queue and
// Receive pops from the caller's own queue.
type InProc struct {
	cluster   *InProcCluster
	index     int
	wantIndex int
}

func (n *InProc) Register(index int) error {
	if index != n.wantIndex {
		return fmt.Errorf("netw.InProc: registered for index %d, asked for %d", n.wantIndex, index)
	}
	n.index = index
	return nil
}

func (n *InProc) Index() int { return n.index }
func (n *InProc) Size() int  { return n.cluster.size }

func (n *InProc) Send(msg message.Message) error {
	n.cluster.mu.Lock()
	q, ok := n.cluster.queues[msg.Header().Target]
	n.cluster.mu.Unlock()
	if !ok {
		return fmt.Errorf("netw.InProc: no such node %d", msg.Header().Target)
	}
	q <- msg
	return nil
}

var errClosed = errors.New("netw.InProc: network closed")

func (n *InProc) Receive() (message.Message, error) {
	n.cluster.mu.Lock()
	q, ok := n.cluster.queues[n.index]
	n.cluster.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("netw.InProc: not registered")
	}
	msg, ok := <-q
	if !ok {
		return nil, errClosed
	}
	return msg, nil
}

func (n *InProc) Close() error {
	n.cluster.mu.Lock()
	defer n.cluster.mu.Unlock()
	if q, ok := n.cluster.queues[n.index]; ok {
		close(q)
		delete(n.cluster.queues, n.index)
	}
	return nil
}
