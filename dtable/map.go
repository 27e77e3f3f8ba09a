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

import "github.com/SnellerInc/sneller/table"

// LocalMap visits only the chunks this node owns, in chunk-index
// order: for a row chunk idx, home(idx) == df.store.Index(). Since
// a chunk's rows for every column live on the same node, those
// columns are fetched with a non-blocking GetValue — they are, by
// construction, already local. Every node in a cluster running the
// same LocalMap call covers a disjoint slice of the frame's rows;
// together they cover the whole frame exactly once, which is what
// makes this the map-reduce-style worker-local pass described in
// spec.md.
func (df *DataFrame) LocalMap(r table.Rower) error {
	row := table.NewRow(localSchema(df.schema))
	self := df.store.Index()
	for idx := 0; idx < df.NumChunks(); idx++ {
		if df.homeOf(idx) != self {
			continue
		}
		for col := range df.schema.Types {
			if err := df.ensure(col, idx, false); err != nil {
				return err
			}
		}
		base := idx * ChunkSize
		n := df.chunkLen(idx)
		for local := 0; local < n; local++ {
			df.fillRow(local, base+local, row)
			r.Accept(row)
		}
	}
	return nil
}

// DistributedMap visits every row of the frame in order, regardless
// of which node owns its chunk: chunks not owned by this node are
// fetched with a blocking GetAndWaitValue, so a DistributedMap call
// observes the whole logical frame exactly once.
func (df *DataFrame) DistributedMap(r table.Rower) error {
	row := table.NewRow(localSchema(df.schema))
	for idx := 0; idx < df.NumChunks(); idx++ {
		for col := range df.schema.Types {
			if err := df.ensure(col, idx, true); err != nil {
				return err
			}
		}
		base := idx * ChunkSize
		n := df.chunkLen(idx)
		for local := 0; local < n; local++ {
			df.fillRow(local, base+local, row)
			r.Accept(row)
		}
	}
	return nil
}

// localSchema returns a schema with the same column types as s but
// none of its chunk-loading bookkeeping, for use by a throwaway Row.
func localSchema(s *table.Schema) *table.Schema {
	return table.FromTypes(s.Types...)
}
