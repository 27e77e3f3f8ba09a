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

// Package dtable implements the distributed DataFrame: a DataFrame
// whose columns are sharded into fixed-size row chunks scattered
// across the cluster by kv.Key.ChunkKey, loaded lazily on demand
// through a store.Store-shaped KV interface.
package dtable

import (
	"fmt"

	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/table"
)

// ChunkSize is the number of rows held in each on-wire chunk, the
// unit of both storage and cross-node placement.
const ChunkSize = 1024

// KV is the slice of store.Store that dtable depends on. Declaring
// it here (rather than importing store directly into every call
// site) keeps dtable usable against any KV-shaped backing, and
// avoids a store<->dtable import cycle since store never needs to
// know about DataFrames.
type KV interface {
	Index() int
	Size() int
	Put(k kv.Key, v kv.Value) error
	GetValue(k kv.Key) (kv.Value, error)
	GetAndWaitValue(k kv.Key) (kv.Value, error)
}

// DataFrame is a schema plus a lazily-materialized window of chunk
// data per column: at most one chunk per column is resident at a
// time, tracked by Schema.LoadedChunk, per spec.md's "Unloaded /
// Loaded(c)" chunk state machine.
type DataFrame struct {
	store  KV
	root   kv.Key
	schema *table.Schema
	chunks []table.ColumnView
}

// New wraps an already-persisted root key and schema for reading.
// Most callers should use Open or OpenAndWait instead, which also
// fetch the schema.
func New(store KV, root kv.Key, schema *table.Schema) *DataFrame {
	return &DataFrame{
		store:  store,
		root:   root,
		schema: schema,
		chunks: make([]table.ColumnView, schema.Width()),
	}
}

// Open fetches the schema bound to root and wraps it for reading.
// It does not block: if root's home node is not this store's node,
// or the schema is not yet present, it returns an error.
func Open(store KV, root kv.Key) (*DataFrame, error) {
	raw, err := store.GetValue(root)
	if err != nil {
		return nil, fmt.Errorf("dtable.Open: %w", err)
	}
	return New(store, root, table.DecodeSchema(raw.Cursor())), nil
}

// OpenAndWait is like Open but blocks until the schema appears.
func OpenAndWait(store KV, root kv.Key) (*DataFrame, error) {
	raw, err := store.GetAndWaitValue(root)
	if err != nil {
		return nil, fmt.Errorf("dtable.OpenAndWait: %w", err)
	}
	return New(store, root, table.DecodeSchema(raw.Cursor())), nil
}

// Schema returns the frame's schema (types and logical row count).
func (df *DataFrame) Schema() *table.Schema { return df.schema }

// Root returns the key the frame's schema is published under.
func (df *DataFrame) Root() kv.Key { return df.root }

// NumChunks returns the number of row-chunks in the frame, including
// a final partial chunk if the row count isn't a multiple of ChunkSize.
func (df *DataFrame) NumChunks() int {
	n := df.schema.Length()
	if n == 0 {
		return 0
	}
	return (n + ChunkSize - 1) / ChunkSize
}

// chunkLen returns how many rows chunk idx holds (ChunkSize, except
// possibly fewer for the last chunk).
func (df *DataFrame) chunkLen(idx int) int {
	remaining := df.schema.Length() - idx*ChunkSize
	if remaining > ChunkSize {
		return ChunkSize
	}
	return remaining
}

// homeOf reports which node owns chunk idx, per kv.Key.ChunkKey's
// placement rule: (root.Node + idx) mod clusterSize. Placement is
// the same for every column, so a chunk's rows for all columns
// always live together on one node.
func (df *DataFrame) homeOf(idx int) int {
	return (df.root.Node + idx) % df.store.Size()
}

func (df *DataFrame) chunkKey(col, idx int) kv.Key {
	return df.root.ChunkKey(col, idx, df.store.Size())
}

// ensure makes chunk idx of column col the resident chunk for that
// column, fetching it over the KV layer if it isn't already. wait
// selects GetAndWaitValue (block until present) over GetValue (fail
// fast); local reads use GetValue since remote chunks are always
// published before any row-range spanning them is read.
func (df *DataFrame) ensure(col, idx int, wait bool) error {
	if df.schema.LoadedChunk(col) == idx {
		return nil
	}
	key := df.chunkKey(col, idx)
	var raw kv.Value
	var err error
	if wait {
		raw, err = df.store.GetAndWaitValue(key)
	} else {
		raw, err = df.store.GetValue(key)
	}
	if err != nil {
		return fmt.Errorf("dtable: loading column %d chunk %d: %w", col, idx, err)
	}
	df.chunks[col] = table.DecodeColumn(raw.Cursor())
	df.schema.SetLoadedChunk(col, idx)
	return nil
}

func (df *DataFrame) checkBounds(row int) {
	if row < 0 || row >= df.schema.Length() {
		panic(fmt.Sprintf("dtable: row index %d out of range [0, %d)", row, df.schema.Length()))
	}
}

// GetBool returns cell (col, row), loading its chunk (waiting on a
// remote fetch if necessary) if it isn't already resident.
func (df *DataFrame) GetBool(col, row int) bool {
	df.checkBounds(row)
	idx, local := row/ChunkSize, row%ChunkSize
	if err := df.ensure(col, idx, true); err != nil {
		panic(err)
	}
	return table.AsBool(df.chunks[col]).Get(local)
}

// GetInt returns cell (col, row) as a 32-bit int, loading its chunk if needed.
func (df *DataFrame) GetInt(col, row int) int32 {
	df.checkBounds(row)
	idx, local := row/ChunkSize, row%ChunkSize
	if err := df.ensure(col, idx, true); err != nil {
		panic(err)
	}
	return table.AsInt(df.chunks[col]).Get(local)
}

// GetFloat returns cell (col, row) as a 32-bit float, loading its chunk if needed.
func (df *DataFrame) GetFloat(col, row int) float32 {
	df.checkBounds(row)
	idx, local := row/ChunkSize, row%ChunkSize
	if err := df.ensure(col, idx, true); err != nil {
		panic(err)
	}
	return table.AsFloat(df.chunks[col]).Get(local)
}

// GetString returns cell (col, row), loading its chunk if needed.
func (df *DataFrame) GetString(col, row int) string {
	df.checkBounds(row)
	idx, local := row/ChunkSize, row%ChunkSize
	if err := df.ensure(col, idx, true); err != nil {
		panic(err)
	}
	return table.AsString(df.chunks[col]).Get(local)
}

// fillRow populates r from chunk-local row `local` of every column's
// currently-resident chunk. Callers must have already ensure()d
// every column for the chunk containing `global`.
func (df *DataFrame) fillRow(local, global int, r *table.Row) {
	for col, t := range df.schema.Types {
		c := df.chunks[col]
		if c.IsMissing(local) {
			r.SetMissing(col)
			continue
		}
		switch t {
		case table.TypeBool:
			r.SetBool(col, table.AsBool(c).Get(local))
		case table.TypeInt:
			r.SetInt(col, table.AsInt(c).Get(local))
		case table.TypeFloat:
			r.SetFloat(col, table.AsFloat(c).Get(local))
		case table.TypeString:
			r.SetString(col, table.AsString(c).Get(local))
		}
	}
	r.SetIndex(global)
}
