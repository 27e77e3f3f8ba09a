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

// Package trivial is the simplest end-to-end eau2 application: node
// 0 publishes an array of 100,000 sequential values, and every node
// sums the whole distributed array back via DistributedMap and
// checks the result against the known closed form.
package trivial

import (
	"fmt"

	"github.com/SnellerInc/sneller/app"
	"github.com/SnellerInc/sneller/dtable"
	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/table"
)

// Rows is the size of the array summed by this application.
const Rows = 100000

// rootName is the key the source array is published under.
const rootName = "trivial-data"

// sum accumulates column 0 of every visited row in float64, so that
// summing Rows float32 values loses no precision versus the known
// closed-form total: the individual terms are exact in float32 (each
// is a small integer), but repeated float32 addition would not be.
type sum struct{ total float64 }

func (s *sum) Accept(r *table.Row) bool {
	s.total += float64(r.GetFloat(0))
	return true
}

// Run builds the source array on node 0 (if this is node 0), then
// has every node load it back and verify the sum.
func Run(a *app.Application) error {
	root := kv.New(rootName, 0)
	if a.Store.Index() == 0 {
		col := table.NewFloatColumn()
		for i := 0; i < Rows; i++ {
			col.Append(float32(i))
		}
		if _, err := dtable.FromArray(a.Store, 0, root.Name, col); err != nil {
			return fmt.Errorf("trivial: publishing source array: %w", err)
		}
	}

	df, err := dtable.OpenAndWait(a.Store, root)
	if err != nil {
		return fmt.Errorf("trivial: opening source array: %w", err)
	}

	var s sum
	if err := df.DistributedMap(&s); err != nil {
		return fmt.Errorf("trivial: summing: %w", err)
	}

	want := float64(Rows-1) * float64(Rows) / 2
	if s.total != want {
		return fmt.Errorf("trivial: SUM = %v, want %v", s.total, want)
	}
	fmt.Printf("trivial: SUM = %v (node %d)\n", s.total, a.Store.Index())
	return nil
}
