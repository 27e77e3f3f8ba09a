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

// Package linus computes degrees of separation in a commit graph:
// a two-column (user, collaborator) edge file is sharded across the
// cluster as a distributed DataFrame, then node 0 runs a breadth-
// first search out from a root user, one degree at a time, scanning
// the whole distributed edge list each round with DistributedMap —
// which pulls in whichever chunks live on other nodes as needed.
package linus

import (
	"fmt"

	"github.com/SnellerInc/sneller/app"
	"github.com/SnellerInc/sneller/dtable"
	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/table"
)

// MaxDegree bounds how many rounds of breadth-first search Run performs.
const MaxDegree = 4

// RootUser is the user BFS starts from when no more specific
// selection is wired in by the caller.
const RootUser = 0

const edgesKey = "linus-edges"

// roundRower collects, in one DistributedMap pass, every user
// adjacent to the current frontier that hasn't been visited yet.
type roundRower struct {
	frontier map[int32]bool
	visited  map[int32]int
	next     map[int32]bool
}

func (r *roundRower) Accept(row *table.Row) bool {
	a, b := row.GetInt(0), row.GetInt(1)
	if r.frontier[a] && r.visited[b] == 0 && b != RootUser {
		r.next[b] = true
	}
	if r.frontier[b] && r.visited[a] == 0 && a != RootUser {
		r.next[a] = true
	}
	return true
}

// Run publishes the edge file (read by node 0) as a distributed
// DataFrame and runs BFS from RootUser out to MaxDegree hops,
// printing the number of newly-discovered users at each degree.
func Run(a *app.Application) error {
	if a.Args.File == "" {
		return fmt.Errorf("linus: -file is required")
	}
	root := kv.New(edgesKey, 0)

	if a.Store.Index() == 0 {
		if _, err := dtable.FromFile(a.Store, 0, root.Name, a.Args.File); err != nil {
			return fmt.Errorf("linus: publishing edge file: %w", err)
		}
	}

	if a.Store.Index() != 0 {
		return nil
	}

	edges, err := dtable.OpenAndWait(a.Store, root)
	if err != nil {
		return fmt.Errorf("linus: opening edges: %w", err)
	}
	if edges.Schema().Width() != 2 {
		return fmt.Errorf("linus: edge file must have exactly 2 columns, got %d", edges.Schema().Width())
	}

	visited := map[int32]int{RootUser: 0}
	frontier := map[int32]bool{RootUser: true}

	for degree := 1; degree <= MaxDegree && len(frontier) > 0; degree++ {
		r := &roundRower{frontier: frontier, visited: visited, next: make(map[int32]bool)}
		if err := edges.DistributedMap(r); err != nil {
			return fmt.Errorf("linus: degree %d: %w", degree, err)
		}
		for u := range r.next {
			visited[u] = degree
		}
		frontier = r.next
		fmt.Printf("linus: degree %d: %d user(s)\n", degree, len(frontier))
	}
	fmt.Printf("linus: %d user(s) reachable within %d degrees of user %d\n", len(visited)-1, MaxDegree, RootUser)
	return nil
}
