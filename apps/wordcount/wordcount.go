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

// Package wordcount counts word frequencies in a text file: node 0
// alone reads and tokenizes the file, streaming the words through a
// Writer into fromVisitor so the word list itself becomes a sharded
// distributed DataFrame like any other. Every node then tallies a
// word/count map over only its own locally-homed chunks via
// LocalMap, publishes that partial map as its own DataFrame, and
// node 0 merges every node's partial via DistributedMap into the
// final result.
package wordcount

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/SnellerInc/sneller/app"
	"github.com/SnellerInc/sneller/dtable"
	"github.com/SnellerInc/sneller/kv"
	"github.com/SnellerInc/sneller/table"
)

const dataKey = "wordcount-data"
const resultKey = "wordcount-result"

func partialKey(node int) string { return fmt.Sprintf("wordcount-partial-%d", node) }

// readWords tokenizes every line of path into lower-cased words, in
// file order.
func readWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordcount: %w", err)
	}
	defer f.Close()

	var words []string
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		for _, w := range strings.FieldsFunc(scan.Text(), func(r rune) bool { return !unicode.IsLetter(r) }) {
			words = append(words, strings.ToLower(w))
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("wordcount: reading %s: %w", path, err)
	}
	return words, nil
}

// wordWriter feeds one word per row into fromVisitor, in file order.
type wordWriter struct {
	words []string
	i     int
}

func (w *wordWriter) Done() bool { return w.i >= len(w.words) }
func (w *wordWriter) Next(r *table.Row) {
	r.SetString(0, w.words[w.i])
	w.i++
}

// adder tallies rows into a local hash map, the Adder rower named by
// spec.md's S3 scenario. It backs both LocalMap's per-node partial
// count over the sharded word list and node 0's DistributedMap merge
// of those partials, via the two Rower wrappers below.
type adder struct {
	counts map[string]int32
}

func newAdder() *adder { return &adder{counts: make(map[string]int32)} }

// wordRower tallies a single-column (word) row, one occurrence each.
type wordRower struct{ *adder }

func (w wordRower) Accept(r *table.Row) bool {
	w.counts[r.GetString(0)]++
	return true
}

// countRower folds a (word, count) row, used to merge partial DataFrames.
type countRower struct{ *adder }

func (c countRower) Accept(r *table.Row) bool {
	c.counts[r.GetString(0)] += r.GetInt(1)
	return true
}

// publishCounts sorts and publishes counts as a (word, count)
// distributed DataFrame rooted at node rootNode.
func publishCounts(store dtable.KV, rootNode int, name string, counts map[string]int32) (*dtable.DataFrame, error) {
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Strings(words)

	wordCol := table.NewStringColumn()
	countCol := table.NewIntColumn()
	for _, w := range words {
		wordCol.Append(w)
		countCol.Append(counts[w])
	}
	return dtable.FromColumns(store, rootNode, name, []table.ColumnView{wordCol, countCol})
}

// Run counts the words in a.Args.File. Only node 0 reads the file and
// publishes it as a sharded word-list DataFrame; every node (node 0
// included) then runs a LocalMap pass over its own chunks of that
// DataFrame and publishes a partial count, and node 0 merges every
// node's partial via DistributedMap and publishes (and prints a
// summary of) the final result.
func Run(a *app.Application) error {
	if a.Args.File == "" {
		return fmt.Errorf("wordcount: -file is required")
	}
	self := a.Store.Index()
	n := a.Args.NumNodes

	if self == 0 {
		words, err := readWords(a.Args.File)
		if err != nil {
			return err
		}
		schema := table.FromTypes(table.TypeString)
		if _, err := dtable.FromVisitor(a.Store, 0, dataKey, schema, len(words), &wordWriter{words: words}); err != nil {
			return fmt.Errorf("wordcount: publishing word list: %w", err)
		}
	}

	data, err := dtable.OpenAndWait(a.Store, kv.New(dataKey, 0))
	if err != nil {
		return fmt.Errorf("wordcount: opening word list: %w", err)
	}
	local := newAdder()
	if err := data.LocalMap(wordRower{local}); err != nil {
		return fmt.Errorf("wordcount: node %d: local count: %w", self, err)
	}
	if _, err := publishCounts(a.Store, self, partialKey(self), local.counts); err != nil {
		return fmt.Errorf("wordcount: publishing partial counts for node %d: %w", self, err)
	}

	if self != 0 {
		return nil
	}

	merged := newAdder()
	for i := 0; i < n; i++ {
		partial, err := dtable.OpenAndWait(a.Store, kv.New(partialKey(i), i))
		if err != nil {
			return fmt.Errorf("wordcount: collecting partial counts from node %d: %w", i, err)
		}
		if err := partial.DistributedMap(countRower{merged}); err != nil {
			return fmt.Errorf("wordcount: merging partial counts from node %d: %w", i, err)
		}
	}

	if _, err := publishCounts(a.Store, 0, resultKey, merged.counts); err != nil {
		return fmt.Errorf("wordcount: publishing result: %w", err)
	}

	var total int64
	for _, c := range merged.counts {
		total += int64(c)
	}
	fmt.Printf("wordcount: %d distinct words, %d total words\n", len(merged.counts), total)
	return nil
}
