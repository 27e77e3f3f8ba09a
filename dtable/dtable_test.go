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
	"testing"

	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/netw"
	"github.com/SnellerInc/sneller/store"
	"github.com/SnellerInc/sneller/table"
)

// cluster spins up n in-process stores, each with its own servicer
// goroutine, sharing one InProcCluster network.
func cluster(t *testing.T, n int) []*store.Store {
	t.Helper()
	c := netw.NewInProcCluster(n)
	stores := make([]*store.Store, n)
	for i := 0; i < n; i++ {
		h := c.Handle(i)
		if err := h.Register(i); err != nil {
			t.Fatal(err)
		}
		stores[i] = store.New(h)
		go stores[i].Serve()
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.StopService()
		}
		for _, s := range stores {
			s.WaitToClose()
		}
	})
	return stores
}

func intColumn(vals ...int32) table.ColumnView {
	c := table.NewIntColumn()
	for _, v := range vals {
		c.Append(v)
	}
	return c
}

func TestFromColumnsAndGet(t *testing.T) {
	stores := cluster(t, 3)

	vals := make([]int32, 2500) // spans 3 chunks at ChunkSize=1024
	for i := range vals {
		vals[i] = int32(i)
	}
	df, err := FromColumns(stores[0], 0, "nums", []table.ColumnView{intColumn(vals...)})
	if err != nil {
		t.Fatal(err)
	}
	if df.NumChunks() != 3 {
		t.Fatalf("expected 3 chunks, got %d", df.NumChunks())
	}

	opened, err := Open(stores[0], df.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range []int{0, 1023, 1024, 2499} {
		got := opened.GetInt(0, row)
		if got != int32(row) {
			t.Fatalf("row %d: got %d want %d", row, got, row)
		}
	}
}

func TestOpenAndWaitAcrossNodes(t *testing.T) {
	stores := cluster(t, 2)

	df, err := FromColumns(stores[0], 0, "remote", []table.ColumnView{intColumn(1, 2, 3, 4, 5)})
	if err != nil {
		t.Fatal(err)
	}

	opened, err := OpenAndWait(stores[1], df.Root())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if got := opened.GetInt(0, i); got != int32(i+1) {
			t.Fatalf("row %d: got %d want %d", i, got, i+1)
		}
	}
}

type sumRower struct{ total int64 }

func (s *sumRower) Accept(r *table.Row) bool {
	s.total += int64(r.GetInt(0))
	return true
}

func TestDistributedMapVisitsEveryRowInOrder(t *testing.T) {
	stores := cluster(t, 3)

	n := 5000
	vals := make([]int32, n)
	var want int64
	for i := range vals {
		vals[i] = int32(i)
		want += int64(i)
	}
	df, err := FromColumns(stores[0], 0, "sum-source", []table.ColumnView{intColumn(vals...)})
	if err != nil {
		t.Fatal(err)
	}

	opened, err := OpenAndWait(stores[1], df.Root())
	if err != nil {
		t.Fatal(err)
	}
	var r sumRower
	if err := opened.DistributedMap(&r); err != nil {
		t.Fatal(err)
	}
	if r.total != want {
		t.Fatalf("got sum %d want %d", r.total, want)
	}
}

func TestLocalMapPartitionsAcrossNodes(t *testing.T) {
	numNodes := 3
	stores := cluster(t, numNodes)

	n := 5000
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(i)
	}
	df, err := FromColumns(stores[0], 0, "partitioned", []table.ColumnView{intColumn(vals...)})
	if err != nil {
		t.Fatal(err)
	}

	var total int64
	var rowsSeen int
	for node := 0; node < numNodes; node++ {
		opened, err := OpenAndWait(stores[node], df.Root())
		if err != nil {
			t.Fatal(err)
		}
		var r sumRower
		if err := opened.LocalMap(&r); err != nil {
			t.Fatal(err)
		}
		total += r.total
		for idx := 0; idx < opened.NumChunks(); idx++ {
			if opened.homeOf(idx) == node {
				rowsSeen += opened.chunkLen(idx)
			}
		}
	}

	var want int64
	for _, v := range vals {
		want += int64(v)
	}
	if total != want {
		t.Fatalf("sum across LocalMap calls = %d, want %d", total, want)
	}
	if rowsSeen != n {
		t.Fatalf("rows partitioned across nodes = %d, want %d", rowsSeen, n)
	}
}

type genWriter struct {
	n    int
	i    int
	base int32
}

func (g *genWriter) Done() bool { return g.i >= g.n }
func (g *genWriter) Next(r *table.Row) {
	r.SetInt(0, g.base+int32(g.i))
	g.i++
}

func TestFromVisitor(t *testing.T) {
	stores := cluster(t, 2)

	schema := table.FromTypes(table.TypeInt)
	df, err := FromVisitor(stores[0], 0, "visited", schema, 10, &genWriter{n: 10, base: 100})
	if err != nil {
		t.Fatal(err)
	}
	opened, err := Open(stores[0], df.Root())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if got := opened.GetInt(0, i); got != int32(100+i) {
			t.Fatalf("row %d: got %d want %d", i, got, 100+i)
		}
	}
}

func TestFromScalar(t *testing.T) {
	stores := cluster(t, 1)

	df, err := FromScalarFloat(stores[0], 0, "scalar", 42.5)
	if err != nil {
		t.Fatal(err)
	}
	opened, err := Open(stores[0], df.Root())
	if err != nil {
		t.Fatal(err)
	}
	if got := opened.GetFloat(0, 0); got != 42.5 {
		t.Fatalf("got %v want 42.5", got)
	}
}

// countingKV wraps a KV and counts fetches per key, so tests can
// assert a chunk is loaded exactly once no matter how many rows
// within it are read.
type countingKV struct {
	KV
	fetches map[kv.Key]int
}

func (c *countingKV) GetValue(k kv.Key) (kv.Value, error) {
	c.fetches[k]++
	return c.KV.GetValue(k)
}

func (c *countingKV) GetAndWaitValue(k kv.Key) (kv.Value, error) {
	c.fetches[k]++
	return c.KV.GetAndWaitValue(k)
}

// TestLazyReloadLoadsEachChunkExactlyOnce checks the chunk-residency
// bookkeeping in ensure/LoadedChunk: scanning every row of a 3-chunk
// column in order must fetch each chunk exactly once, never re-fetching
// a chunk that's already the resident one for that column.
func TestLazyReloadLoadsEachChunkExactlyOnce(t *testing.T) {
	stores := cluster(t, 1)

	n := 2500 // 3 chunks at ChunkSize=1024
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(i)
	}
	built, err := FromColumns(stores[0], 0, "lazy", []table.ColumnView{intColumn(vals...)})
	if err != nil {
		t.Fatal(err)
	}

	counting := &countingKV{KV: stores[0], fetches: make(map[kv.Key]int)}
	opened, err := Open(counting, built.Root())
	if err != nil {
		t.Fatal(err)
	}
	for row := 0; row < n; row++ {
		if got := opened.GetInt(0, row); got != int32(row) {
			t.Fatalf("row %d: got %d want %d", row, got, row)
		}
	}

	for idx := 0; idx < built.NumChunks(); idx++ {
		key := built.chunkKey(0, idx)
		if got := counting.fetches[key]; got != 1 {
			t.Fatalf("chunk %d: fetched %d times, want exactly 1", idx, got)
		}
	}
}
