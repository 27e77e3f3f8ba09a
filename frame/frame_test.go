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
	"testing"

	"github.com/SnellerInc/sneller/table"
)

func buildFrame(n int) *DataFrame {
	df := New(table.FromTypes(table.TypeInt))
	row := table.NewRow(df.Schema)
	for i := 0; i < n; i++ {
		row.SetInt(0, int32(i))
		df.AddRow(row)
	}
	return df
}

type sumRower struct{ sum int32 }

func (s *sumRower) Accept(r *table.Row) bool {
	s.sum += r.GetInt(0)
	return r.GetInt(0)%2 == 0
}

func TestMapAndFilter(t *testing.T) {
	df := buildFrame(10)
	s := &sumRower{}
	df.Map(s)
	if s.sum != 45 {
		t.Fatalf("sum = %d, want 45", s.sum)
	}
	evens := df.Filter(&sumRower{})
	if evens.Schema.Length() != 5 {
		t.Fatalf("filter kept %d rows, want 5", evens.Schema.Length())
	}
}

func TestCloneEquals(t *testing.T) {
	df := buildFrame(5)
	clone := df.Clone()
	if !df.Equal(clone) {
		t.Fatal("clone should equal original")
	}
}

type parallelSum struct{ sum int32 }

func (p *parallelSum) Accept(r *table.Row) bool {
	p.sum += r.GetInt(0)
	return true
}
func (p *parallelSum) Clone() table.ParallelRower { return &parallelSum{} }
func (p *parallelSum) JoinDelete(other table.ParallelRower) {
	p.sum += other.(*parallelSum).sum
}

func TestPMapFallsBackSequentially(t *testing.T) {
	df := buildFrame(1000)
	p := &parallelSum{}
	df.PMap(p)
	if p.sum != 499500 {
		t.Fatalf("pmap sum = %d, want 499500", p.sum)
	}
}
