// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package dastrie implements a static double-array trie: an immutable,
// pointer-free mapping from sorted byte-string keys to typed values,
// built once offline and queried many times afterward.
//
// A double array stores every trie node's children implicitly, as an
// arithmetic function of the parent's BASE value and a remapped child
// byte, rather than as explicit pointers:
//
//	child index = BASE(parent) + table[c] + 1
//
// table is a fixed 256-byte permutation, shared by the whole trie, that
// assigns small offsets to frequently used bytes so child rows stay
// dense. A CHECK byte stored alongside each element disambiguates a real
// child from an unrelated element that merely happens to occupy the same
// arithmetic slot.
//
// Once a subtree is reduced to a single key, the trie stops allocating
// array nodes for it and instead writes the key's remaining suffix and
// encoded value directly into an append-only tail buffer, addressed by a
// negative BASE:
//
//	┌─────────────────┐     ┌──────────────────────────┐
//	│ double array     │     │ tail                     │
//	├─────────────────┤     ├──────────────────────────┤
//	│ BASE │ CHECK     │ ... │ "ing\0" <encoded value>  │
//	│ BASE │ CHECK     │     │ ...                      │
//	└─────────────────┘     └──────────────────────────┘
//
// Build a trie with Builder, serialize it with WriteTo or Bytes, and
// query it with Open, Load, or Read. Keys must be added to a Builder in
// strictly ascending byte order; queries against a built Trie run in time
// proportional to key length, independent of the number of keys stored.
package dastrie
