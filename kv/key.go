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

// Package kv defines the Key and Value types shared by the store,
// message, and dataframe packages: a Key names a logical cell and
// the node that owns it, and a Value is the opaque serialized blob
// stored under a Key.
package kv

import (
	"fmt"

	"github.com/SnellerInc/sneller/wire"
)

// Key names a logical cell and its home node. Keys are value
// types: two Keys are equal exactly when their Name and Node match.
type Key struct {
	Name string
	Node int
}

// New returns a Key naming node as the home node for name.
func New(name string, node int) Key {
	if node < 0 {
		panic("kv.New: node index must be non-negative")
	}
	return Key{Name: name, Node: node}
}

// Equal reports whether k and other name the same cell.
func (k Key) Equal(other Key) bool {
	return k.Name == other.Name && k.Node == other.Node
}

// Clone returns a copy of k. Key is already a value type, so
// Clone exists only to satisfy call sites that clone uniformly
// across Key and Value.
func (k Key) Clone() Key { return k }

// String renders the key for diagnostics, matching the
// "<name>@<node>" convention used by the chunk key layout.
func (k Key) String() string {
	return fmt.Sprintf("%s@%d", k.Name, k.Node)
}

// Encode appends k's wire encoding to buf: a length-prefixed name
// followed by its node index as a machine word.
func (k Key) Encode(buf *wire.Buffer) {
	buf.PutString(k.Name)
	buf.PutUword(wire.Word(k.Node))
}

// DecodeKey reads a Key previously written by Key.Encode.
func DecodeKey(c *wire.Cursor) Key {
	name := c.ReadString()
	node := int(c.ReadUword())
	return Key{Name: name, Node: node}
}

// ChunkKey returns the key naming chunk idx of column col of the
// table rooted at root, per spec.md's chunk-naming rule:
// "<root_key_name>-column<col>-chunk<idx>" at node
// (root.Node+idx) mod n.
func (k Key) ChunkKey(col, idx, n int) Key {
	if n <= 0 {
		panic("kv.ChunkKey: cluster size must be positive")
	}
	home := (k.Node + idx) % n
	name := fmt.Sprintf("%s-column%d-chunk%d", k.Name, col, idx)
	return Key{Name: name, Node: home}
}
