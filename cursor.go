// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package dastrie

import (
	"fmt"

	"github.com/go-dastrie/dastrie/internal/tail"
)

type cursorStateKind int

const (
	cursorActive cursorStateKind = iota
	cursorDone
)

// Cursor performs a common-prefix search: it walks the single path spelled
// out by a query and yields, in ascending length order, every stored key
// that is itself a byte-prefix of that query. A zero Cursor is not usable;
// obtain one from Trie.Prefix.
//
// A Cursor holds no reference into the Trie's mutable state beyond the Trie
// pointer itself, so Clone is always safe.
type Cursor[T any] struct {
	trie  *Trie[T]
	query []byte

	cur        int
	length     int
	rootProbed bool

	state cursorStateKind
	key   []byte
	value T
	err   error
}

// Next advances the cursor to the next stored key that is a prefix of the
// query, returning false once enumeration is exhausted or an error has
// occurred. Call Err after Next returns false to distinguish exhaustion
// from failure.
func (c *Cursor[T]) Next() bool {
	if c.state == cursorDone {
		return false
	}
	t := c.trie
	r := t.tailReader()

	// Every node visited after consuming a real byte of the query is
	// probed for a terminator child immediately, within the loop below.
	// The root is special: it is the one node reached without consuming
	// any byte at all, so it needs exactly one probe here to catch a
	// stored empty key, which would otherwise never be checked.
	if !c.rootProbed {
		c.rootProbed = true
		matched, err := c.yieldTerminator(t, r, c.cur)
		if err != nil {
			c.err = err
			c.state = cursorDone
			return false
		}
		if matched {
			return true
		}
	}

	for {
		if c.length >= len(c.query) {
			c.state = cursorDone
			return false
		}
		ch := c.query[c.length]
		next, ok := t.descend(c.cur, ch)
		if !ok {
			c.state = cursorDone
			return false
		}

		base := t.da.GetBase(next)
		if base < 0 {
			// The query path runs straight into a leaf: at most one more
			// key can match, and only if the leaf's stored postfix is
			// itself a prefix of what remains of the query.
			c.length++
			offset := int(-base)
			r.Seek(offset)
			remaining := c.query[c.length:]
			if !r.MatchStringPartial(remaining) {
				c.state = cursorDone
				return false
			}
			postfixLen := r.Strlen()
			r.Seek(offset + postfixLen + 1)
			value, err := t.valueCodec.Decode(r)
			if err != nil {
				c.err = corrupt(fmt.Sprintf("decode value at depth %d: %v", c.length, err))
				c.state = cursorDone
				return false
			}
			c.length += postfixLen
			c.key = append([]byte(nil), c.query[:c.length]...)
			c.value = value
			c.state = cursorDone
			return true
		}

		c.cur = next
		c.length++

		matched, err := c.yieldTerminator(t, r, c.cur)
		if err != nil {
			c.err = err
			c.state = cursorDone
			return false
		}
		if matched {
			return true
		}
	}
}

// yieldTerminator checks whether node has a terminator child leading to a
// leaf, which represents a stored key exactly c.length bytes long (the
// query's prefix consumed so far). On a match it decodes the value into
// c.key/c.value and reports true.
func (c *Cursor[T]) yieldTerminator(t *Trie[T], r *tail.Reader, node int) (bool, error) {
	term, ok := t.descend(node, 0)
	if !ok {
		return false, nil
	}
	base := t.da.GetBase(term)
	if base == 0 {
		// A vacant element carries CHECK 0, the same value as table[0], so
		// the probe can land on one: node simply has no terminator child.
		return false, nil
	}
	if base > 0 {
		return false, corrupt(fmt.Sprintf("terminator transition at depth %d did not lead to a leaf", c.length))
	}
	offset := int(-base)
	r.Seek(offset)
	if r.Strlen() != 0 {
		return false, corrupt(fmt.Sprintf("terminator leaf at depth %d has a non-empty postfix", c.length))
	}
	r.Seek(offset + 1)
	value, err := t.valueCodec.Decode(r)
	if err != nil {
		return false, corrupt(fmt.Sprintf("decode value at depth %d: %v", c.length, err))
	}
	c.key = append([]byte(nil), c.query[:c.length]...)
	c.value = value
	return true, nil
}

// Key returns the key of the current result. Only valid after Next has
// returned true.
func (c *Cursor[T]) Key() []byte { return c.key }

// Value returns the value of the current result. Only valid after Next has
// returned true.
func (c *Cursor[T]) Value() T { return c.value }

// Err returns the first error encountered during enumeration, if any.
func (c *Cursor[T]) Err() error { return c.err }

// Clone returns an independent copy of the cursor's current traversal
// state. Advancing the clone never affects c, and vice versa.
func (c *Cursor[T]) Clone() *Cursor[T] {
	return &Cursor[T]{
		trie:       c.trie,
		query:      append([]byte(nil), c.query...),
		cur:        c.cur,
		length:     c.length,
		rootProbed: c.rootProbed,
		state:      c.state,
		key:        append([]byte(nil), c.key...),
		value:      c.value,
		err:        c.err,
	}
}
