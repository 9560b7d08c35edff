// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package chartable computes the byte-frequency permutation used to densify
// a double array's child rows.
package chartable

import "sort"

// NumChars is the number of distinct byte values a table maps.
const NumChars = 256

// Table is a bijection from raw byte value to remapped slot value. Table[0]
// is always 0: the terminator byte must land in the "end-of-key" slot
// (BASE + 1) so a leaf reached via the terminator never collides with a
// same-row sibling.
type Table [NumChars]byte

// Identity returns the no-op table (table[c] == c for all c).
func Identity() Table {
	var t Table
	for i := range t {
		t[i] = byte(i)
	}
	return t
}

// Build counts byte occurrences across keys (plus one implicit terminator
// occurrence per key) and assigns the smallest remapped values to the most
// frequent bytes, so that common transitions need the smallest child-row
// offsets.
func Build(keys [][]byte) Table {
	var freq [NumChars]int64
	for _, k := range keys {
		for _, c := range k {
			freq[c]++
		}
		freq[0]++
	}

	order := make([]int, NumChars)
	for i := range order {
		order[i] = i
	}
	// Stable sort keeps ties in ascending byte-value order, so the table is
	// deterministic across builds of the same key set.
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	var t Table
	for rank, c := range order {
		t[c] = byte(rank)
	}

	// The terminator must land in slot 0 so that BASE+table[0]+1 is always
	// the natural end-of-key slot, regardless of how frequent the raw NUL
	// byte turned out to be relative to other bytes in the corpus. Swap
	// whichever byte claimed slot 0 into the terminator's old slot.
	if t[0] != 0 {
		displaced := byte(0)
		for c, rank := range t {
			if rank == 0 {
				displaced = byte(c)
				break
			}
		}
		t[displaced] = t[0]
		t[0] = 0
	}
	return t
}
