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

package frame

import (
	"sync"

	"github.com/SnellerInc/sneller/table"
)

// MaxThreads bounds the number of worker goroutines pmap will use.
const MaxThreads = 8

// MinRowsPerThread is the smallest per-worker slice pmap will
// schedule; below this, pmap falls back to sequential Map.
const MinRowsPerThread = 500_000

// PMap is the parallel variant of Map. It picks a worker count
// between 1 and MaxThreads such that every worker's row slice is
// at least MinRowsPerThread, else it falls back to sequential Map.
// r is cloned once per worker beyond the first (the original
// receives the first slice); after every worker has finished, results
// are folded back right-to-left into adjacent pairs
// (rowers[i-1].JoinDelete(rowers[i]) for i from threads-1 down to 1),
// leaving the combined result in rowers[0]. This guarantees exactly
// one Accept call per row and exactly one JoinDelete per clone, and
// matches JoinDelete's documented left-absorbs-right contract: callers
// whose reduction isn't commutative must still get the one order PMap
// promises, not an arbitrary one.
func (df *DataFrame) PMap(r table.ParallelRower) {
	n := df.Schema.Length()
	threads := n / MinRowsPerThread
	if threads < 1 {
		threads = 1
	}
	if threads > MaxThreads {
		threads = MaxThreads
	}
	if threads == 1 {
		df.Map(r)
		return
	}

	rowers := make([]table.ParallelRower, threads)
	rowers[0] = r
	for i := 1; i < threads; i++ {
		rowers[i] = r.Clone()
	}

	base := n / threads
	rem := n % threads
	start := 0

	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		size := base
		if i < rem {
			size++
		}
		lo, hi := start, start+size
		start = hi
		go func(worker table.ParallelRower, lo, hi int) {
			defer wg.Done()
			row := table.NewRow(df.Schema)
			for i := lo; i < hi; i++ {
				df.FillRow(i, row)
				worker.Accept(row)
			}
		}(rowers[i], lo, hi)
	}
	wg.Wait()

	for i := threads - 1; i > 0; i-- {
		rowers[i-1].JoinDelete(rowers[i])
	}
}
