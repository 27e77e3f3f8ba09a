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

// Package chunked implements a generic chunked-array container:
// a sequence of fixed-size blocks that grows one block at a time.
// Appending never moves previously-written elements, which keeps
// element addresses stable within a block and avoids the O(n) copy
// that a single flat growing slice would incur on repeated pushes.
package chunked

import "golang.org/x/exp/slices"

// BlockSize is the number of elements held by one block.
const BlockSize = 1024

// Array is a chunked array of T.
type Array[T any] struct {
	blocks [][]T
	length int
}

// Len returns the number of elements appended so far.
func (a *Array[T]) Len() int { return a.length }

// Append adds v to the end of the array, allocating a new
// block if the last block is full.
func (a *Array[T]) Append(v T) {
	bi := a.length / BlockSize
	off := a.length % BlockSize
	if bi == len(a.blocks) {
		a.blocks = append(a.blocks, make([]T, 0, BlockSize))
	}
	if off == len(a.blocks[bi]) {
		a.blocks[bi] = append(a.blocks[bi], v)
	} else {
		a.blocks[bi][off] = v
	}
	a.length++
}

// Get returns the element at i. It panics if i is out of range,
// matching spec.md's "out-of-bounds is fatal" error disposition.
func (a *Array[T]) Get(i int) T {
	if i < 0 || i >= a.length {
		panic("chunked.Array: index out of range")
	}
	return a.blocks[i/BlockSize][i%BlockSize]
}

// Set overwrites the element at i. It panics if i is out of range.
func (a *Array[T]) Set(i int, v T) {
	if i < 0 || i >= a.length {
		panic("chunked.Array: index out of range")
	}
	a.blocks[i/BlockSize][i%BlockSize] = v
}

// Clone deep-copies the array's blocks so that mutations to the
// clone are never observed by the original.
func (a *Array[T]) Clone() *Array[T] {
	out := &Array[T]{
		blocks: make([][]T, len(a.blocks)),
		length: a.length,
	}
	for i, b := range a.blocks {
		out.blocks[i] = slices.Clone(b)
	}
	return out
}

// Each calls f for every element in order, 0..Len().
func (a *Array[T]) Each(f func(i int, v T)) {
	for i := 0; i < a.length; i++ {
		f(i, a.Get(i))
	}
}

// Equal reports whether a and b hold the same length and the
// same elements in the same order, using eq for element comparison.
func Equal[T any](a, b *Array[T], eq func(x, y T) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !eq(a.Get(i), b.Get(i)) {
			return false
		}
	}
	return true
}
