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

package dtable

import (
	"fmt"

	"github.com/SnellerInc/sneller/frame"
	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/table"
)

// FromColumns builds and publishes a new distributed DataFrame named
// name, rooted at rootNode, from already-materialized columns: every
// column is sliced into ChunkSize-row chunks and each chunk is Put
// under its placement key before the schema itself is published.
// Columns must all have equal length.
func FromColumns(store KV, rootNode int, name string, cols []table.ColumnView) (*DataFrame, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("dtable.FromColumns: at least one column is required")
	}
	length := cols[0].Len()
	for i, c := range cols {
		if c.Len() != length {
			return nil, fmt.Errorf("dtable.FromColumns: column %d has %d rows, column 0 has %d", i, c.Len(), length)
		}
	}

	root := kv.New(name, rootNode)
	schema := table.FromTypes(colTypes(cols)...)
	schema.SetLength(length)

	n := (length + ChunkSize - 1) / ChunkSize
	for col, c := range cols {
		for idx := 0; idx < n; idx++ {
			start := idx * ChunkSize
			end := start + ChunkSize
			if end > length {
				end = length
			}
			chunk := c.Slice(start, end)
			key := root.ChunkKey(col, idx, store.Size())
			if err := store.Put(key, kv.FromSerializable(chunk)); err != nil {
				return nil, fmt.Errorf("dtable.FromColumns: publishing column %d chunk %d: %w", col, idx, err)
			}
		}
	}

	if err := store.Put(root, kv.FromSerializable(schema)); err != nil {
		return nil, fmt.Errorf("dtable.FromColumns: publishing schema: %w", err)
	}
	return New(store, root, schema), nil
}

func colTypes(cols []table.ColumnView) []table.ColType {
	out := make([]table.ColType, len(cols))
	for i, c := range cols {
		out[i] = c.Type()
	}
	return out
}

// FromArray builds a single-column distributed DataFrame from an
// already-materialized column, e.g. the in-memory result of a local
// computation that should now be visible to the rest of the cluster.
func FromArray(store KV, rootNode int, name string, col table.ColumnView) (*DataFrame, error) {
	return FromColumns(store, rootNode, name, []table.ColumnView{col})
}

// FromScalarBool publishes a one-row, one-column distributed
// DataFrame holding a single bool value.
func FromScalarBool(store KV, rootNode int, name string, v bool) (*DataFrame, error) {
	c := table.NewBoolColumn()
	c.Append(v)
	return FromArray(store, rootNode, name, c)
}

// FromScalarInt publishes a one-row, one-column distributed
// DataFrame holding a single 32-bit int value.
func FromScalarInt(store KV, rootNode int, name string, v int32) (*DataFrame, error) {
	c := table.NewIntColumn()
	c.Append(v)
	return FromArray(store, rootNode, name, c)
}

// FromScalarFloat publishes a one-row, one-column distributed
// DataFrame holding a single 32-bit float value.
func FromScalarFloat(store KV, rootNode int, name string, v float32) (*DataFrame, error) {
	c := table.NewFloatColumn()
	c.Append(v)
	return FromArray(store, rootNode, name, c)
}

// FromScalarString publishes a one-row, one-column distributed
// DataFrame holding a single string value.
func FromScalarString(store KV, rootNode int, name string, v string) (*DataFrame, error) {
	c := table.NewStringColumn()
	c.Append(v)
	return FromArray(store, rootNode, name, c)
}

// FromVisitor builds a distributed DataFrame of numRows rows by
// repeatedly calling w.Next on a throwaway local Row until w.Done()
// or numRows rows have been produced, then shards the assembled
// frame.DataFrame across the cluster exactly as FromColumns does.
// The schema given here fixes the column types up front; w.Next is
// expected to populate every column of each row it is handed.
func FromVisitor(store KV, rootNode int, name string, schema *table.Schema, numRows int, w table.Writer) (*DataFrame, error) {
	local := frame.New(table.FromTypes(schema.Types...))
	row := table.NewRow(local.Schema)
	for i := 0; i < numRows && !w.Done(); i++ {
		w.Next(row)
		local.AddRow(row)
	}
	return FromColumns(store, rootNode, name, local.Columns)
}
