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

// Package store implements the distributed key-value store: a
// per-node map from Key to Value, remote get/put over the message
// layer, a servicer goroutine dispatching inbound messages, and a
// reply rendezvous for outstanding remote gets.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/message"
	"github.com/SnellerInc/sneller/netw"
	"github.com/SnellerInc/sneller/wire"
	"github.com/dchest/siphash"
)

// ErrKeyNotFound is returned by GetValue when the key is not
// present locally and no wait was requested.
var ErrKeyNotFound = errors.New("store: key not found")

// entry is what the store actually keeps in its map: chunks above
// wire.CompressThreshold are kept compressed at rest, transparently
// inflated again on read. This is purely a storage-density
// optimization; it is never observable through GetValue's result.
type entry struct {
	compressed bool
	bytes      []byte
}

// Store is a node's binding of Key to Value, plus the machinery to
// satisfy gets and puts for keys owned by other nodes.
type Store struct {
	index   int
	network netw.Network

	mu   sync.Mutex
	cond *sync.Cond
	data map[string]entry

	rendez rendezvous

	killOnce sync.Once
	closed   chan struct{}
	wg       sync.WaitGroup
}

// New returns a Store bound to network, which must already be
// Registered under the node's own index.
func New(network netw.Network) *Store {
	s := &Store{
		index:   network.Index(),
		network: network,
		data:    make(map[string]entry),
		closed:  make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	s.rendez.init()
	return s
}

// Index returns the node index this store belongs to.
func (s *Store) Index() int { return s.index }

// Size returns the cluster size, per the underlying network.
func (s *Store) Size() int { return s.network.Size() }

func pack(v kv.Value) entry {
	raw := v.Bytes()
	if len(raw) > wire.CompressThreshold {
		return entry{compressed: true, bytes: wire.Compress(raw)}
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return entry{compressed: false, bytes: out}
}

func unpack(e entry) kv.Value {
	if !e.compressed {
		return kv.NewValue(e.bytes)
	}
	raw, err := wire.Decompress(e.bytes)
	if err != nil {
		panic(fmt.Sprintf("store: corrupt compressed entry: %v", err))
	}
	return kv.NewValue(raw)
}

// storeLocal inserts v under name, taking ownership of it, and
// wakes every goroutine blocked in GetAndWaitValue for this store.
func (s *Store) storeLocal(name string, v kv.Value) {
	s.mu.Lock()
	s.data[name] = pack(v)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Put inserts v under k. If k's home node is this node, ownership
// of v transfers to the store immediately. Otherwise a Put message
// is sent to the home node, which inserts on arrival.
func (s *Store) Put(k kv.Key, v kv.Value) error {
	if k.Node == s.index {
		s.storeLocal(k.Name, v)
		return nil
	}
	return s.network.Send(message.NewPut(s.index, k.Node, k, v))
}

// PlaceKey derives a Key for name whose home node is chosen
// deterministically by hashing name, for callers that want the
// store to pick a placement rather than naming one explicitly.
func (s *Store) PlaceKey(name string) kv.Key {
	n := s.Size()
	if n <= 0 {
		n = 1
	}
	h := siphash.Hash(0, 0, []byte(name))
	return kv.New(name, int(h%uint64(n)))
}

// GetValue returns the Value bound to k. It never blocks: if k is
// not local, or is local but absent, it returns an error. Callers
// that want to wait for a value to appear must use GetAndWaitValue.
func (s *Store) GetValue(k kv.Key) (kv.Value, error) {
	if k.Node != s.index {
		return kv.Value{}, fmt.Errorf("store.GetValue: %s is not local to node %d", k, s.index)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[k.Name]
	if !ok {
		return kv.Value{}, fmt.Errorf("%w: %s", ErrKeyNotFound, k)
	}
	return unpack(e), nil
}

// GetAndWaitValue returns the Value bound to k, blocking until it
// appears. For a local key this waits on a condition variable
// signaled by every local Put; for a remote key it sends a Get
// message and blocks on the reply rendezvous. Only one remote get
// may be outstanding per store at a time. The rendezvous does not
// serialize overlapping callers: a second remote get replaces the
// first one's slot, so callers must not overlap remote gets.
func (s *Store) GetAndWaitValue(k kv.Key) (kv.Value, error) {
	if k.Node == s.index {
		s.mu.Lock()
		for {
			if e, ok := s.data[k.Name]; ok {
				s.mu.Unlock()
				return unpack(e), nil
			}
			s.cond.Wait()
		}
	}
	get := message.NewGet(s.index, k.Node, k)
	s.rendez.beginWait(get.Hdr.ID)
	if err := s.network.Send(get); err != nil {
		s.rendez.abort(get.Hdr.ID)
		return kv.Value{}, fmt.Errorf("store.GetAndWaitValue: sending Get for %s: %w", k, err)
	}
	return s.rendez.wait(), nil
}
