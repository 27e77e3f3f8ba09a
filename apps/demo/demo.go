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

// Package demo exercises the full pipeline: a local parallel
// reduction (frame.PMap) used as the reference answer, a
// distributed array sharded across the cluster (dtable.FromArray),
// a per-node partial sum computed with LocalMap, and node 0
// reducing the partial sums it collects from every node with
// GetAndWaitValue before publishing and checking the final answer.
package demo

import (
	"fmt"

	"github.com/SnellerInc/sneller/app"
	"github.com/SnellerInc/sneller/dtable"
	"github.com/SnellerInc/sneller/frame"
	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/table"
)

// Rows is the size of the demo array.
const Rows = 20000

const sourceKey = "demo-data"
const resultKey = "demo-result"

func partialKey(node int) string { return fmt.Sprintf("demo-partial-%d", node) }

type intSum struct{ total int64 }

func (s *intSum) Accept(r *table.Row) bool {
	s.total += int64(r.GetInt(0))
	return true
}

func (s *intSum) Clone() table.ParallelRower { return &intSum{} }
func (s *intSum) JoinDelete(other table.ParallelRower) {
	s.total += other.(*intSum).total
}

// referenceSum computes the expected total locally with frame.PMap,
// independent of anything published to the cluster, as the oracle
// Run checks the distributed answer against.
func referenceSum() int64 {
	df := frame.New(table.FromTypes())
	col := table.NewIntColumn()
	for i := 0; i < Rows; i++ {
		col.Append(int32(i))
	}
	df.AddColumn(col)
	var s intSum
	df.PMap(&s)
	return s.total
}

// Run publishes the source array on node 0, has every node sum its
// own local partition, collects every node's partial sum on node 0,
// and checks the total against the known reference.
func Run(a *app.Application) error {
	self := a.Store.Index()
	n := a.Args.NumNodes
	root := kv.New(sourceKey, 0)

	if self == 0 {
		col := table.NewIntColumn()
		for i := 0; i < Rows; i++ {
			col.Append(int32(i))
		}
		if _, err := dtable.FromArray(a.Store, 0, root.Name, col); err != nil {
			return fmt.Errorf("demo: publishing source array: %w", err)
		}
	}

	df, err := dtable.OpenAndWait(a.Store, root)
	if err != nil {
		return fmt.Errorf("demo: opening source array: %w", err)
	}

	var local intSum
	if err := df.LocalMap(&local); err != nil {
		return fmt.Errorf("demo: local_map: %w", err)
	}
	if _, err := dtable.FromScalarInt(a.Store, self, partialKey(self), int32(local.total)); err != nil {
		return fmt.Errorf("demo: publishing partial sum: %w", err)
	}

	if self != 0 {
		return nil
	}

	var total int64
	for i := 0; i < n; i++ {
		partial, err := dtable.OpenAndWait(a.Store, kv.New(partialKey(i), i))
		if err != nil {
			return fmt.Errorf("demo: collecting partial sum from node %d: %w", i, err)
		}
		total += int64(partial.GetInt(0, 0))
	}

	want := referenceSum()
	if _, err := dtable.FromScalarBool(a.Store, 0, resultKey, total == want); err != nil {
		return fmt.Errorf("demo: publishing result: %w", err)
	}
	if total != want {
		return fmt.Errorf("demo: SUM = %d, want %d", total, want)
	}
	fmt.Printf("demo: SUM = %d across %d node(s) — PASS\n", total, n)
	return nil
}
