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

package store

import (
	"sync"

	"github.com/SnellerInc/sneller/kv"
	"github.com/google/uuid"
)

// rendezvous is the single-slot handoff between GetAndWaitValue's
// caller and the servicer goroutine that eventually sees the
// matching Reply arrive. spec.md §4.5/§9 only ever allow one
// outstanding remote get per store, so a single slot (rather than a
// map of slots keyed by id) is sufficient; the id is kept only to
// reject a stale Reply that arrives after the slot has moved on.
type rendezvous struct {
	mu      sync.Mutex
	cond    *sync.Cond
	waiting bool
	id      uuid.UUID
	ready   bool
	value   kv.Value
}

func (r *rendezvous) init() {
	r.cond = sync.NewCond(&r.mu)
}

// beginWait claims the slot for id. Callers must hold no other
// outstanding wait; violating that contract is a protocol error in
// the caller, not something rendezvous can detect on its own.
func (r *rendezvous) beginWait(id uuid.UUID) {
	r.mu.Lock()
	r.waiting = true
	r.id = id
	r.ready = false
	r.mu.Unlock()
}

// abort releases the slot without a value, used when the Get could
// not even be sent.
func (r *rendezvous) abort(id uuid.UUID) {
	r.mu.Lock()
	if r.waiting && r.id == id {
		r.waiting = false
	}
	r.mu.Unlock()
}

// deliver hands v to the waiter for id, if one is still pending. A
// Reply whose id doesn't match the current slot is stale or a
// protocol violation and is silently dropped.
func (r *rendezvous) deliver(id uuid.UUID, v kv.Value) {
	r.mu.Lock()
	if r.waiting && r.id == id {
		r.value = v
		r.ready = true
		r.cond.Broadcast()
	}
	r.mu.Unlock()
}

// wait blocks until deliver fills the slot claimed by the most
// recent beginWait, then releases it.
func (r *rendezvous) wait() kv.Value {
	r.mu.Lock()
	for !r.ready {
		r.cond.Wait()
	}
	v := r.value
	r.ready = false
	r.waiting = false
	r.mu.Unlock()
	return v
}
