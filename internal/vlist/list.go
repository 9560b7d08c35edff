// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package vlist implements the doubly linked list of vacant double-array
// slots the builder walks while searching for a BASE to assign to an
// interior node.
package vlist

// List is a doubly linked free list laid out as two parallel slices indexed
// by element position. Index 0 is the sentinel: list.next(0) is the first
// vacant index, list.prev(0) is the last. The list auto-extends: asking for
// the successor of an index beyond the tracked region silently answers
// "the next integer", and Use splices an index out, growing the backing
// slices on demand exactly as far as required.
type List struct {
	prev []int
	next []int
}

// New returns a list whose only vacant index, initially, is 1 (the trie
// root lives at index 1 and is claimed separately by the builder before any
// call to Next/Use).
func New() *List {
	l := &List{
		prev: []int{0},
		next: []int{1},
	}
	return l
}

// Next returns the index of the next vacant slot after i. For i beyond the
// tracked region this is simply i+1: everything past the end is implicitly
// vacant until Expand or Use grows the list to cover it.
func (l *List) Next(i int) int {
	if i < len(l.next) {
		return l.next[i]
	}
	return i + 1
}

// Expand grows the tracked region to cover at least size elements (indices
// 0..size-1), threading every newly covered index onto the free list
// between the sentinel and whatever was previously its last vacant entry.
func (l *List) Expand(size int) {
	if len(l.next) >= size {
		return
	}
	first := len(l.next)
	for len(l.next) < size {
		l.next = append(l.next, 0)
		l.prev = append(l.prev, 0)
	}

	back := l.prev[0]
	for i := first; i < len(l.next); i++ {
		l.prev[i] = back
		l.next[i] = i + 1
		back = i
	}
	l.prev[0] = len(l.next) - 1
}

// Use splices index i out of the free list, marking it no longer vacant.
// If i's successor lies beyond the tracked region, the list is grown by
// exactly one slot first so the splice has somewhere to land.
func (l *List) Use(i int) {
	prev := l.prev[i]
	next := l.next[i]
	if next >= len(l.next) {
		l.next = append(l.next, next+1)
		l.prev = append(l.prev, 0)
		l.prev[0] = next // the rightmost vacant node
	}
	l.next[prev] = next
	l.prev[next] = prev
}
