// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package dastrie

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/go-dastrie/dastrie/internal/container"
	"github.com/go-dastrie/dastrie/internal/element"
	"github.com/go-dastrie/dastrie/internal/tail"
)

// TrieOption configures a Trie at open/load time.
type TrieOption func(*trieOptions)

type trieOptions struct {
	logger  *slog.Logger
	madvise bool
}

// WithTrieLogger sets an optional logger used for diagnostic messages while
// opening or querying a Trie.
func WithTrieLogger(logger *slog.Logger) TrieOption {
	return func(o *trieOptions) { o.logger = logger }
}

// WithRandomAccessHint advises the kernel, via madvise(MADV_RANDOM), that a
// memory-mapped trie will be accessed with no useful locality. Only has an
// effect on Trie values created by Open. Double-array lookups jump around
// the element array unpredictably, so this is usually a net win for large
// tries backed by a cold page cache.
func WithRandomAccessHint(enabled bool) TrieOption {
	return func(o *trieOptions) { o.madvise = enabled }
}

// Trie is a read-only, immutable double-array trie mapping byte-string keys
// to values of type T. A Trie is safe for concurrent use by multiple
// goroutines: every query is purely read-only against its backing buffers.
type Trie[T any] struct {
	logger     *slog.Logger
	valueCodec ValueCodec[T]

	table [256]byte
	da    *element.Array
	tail  []byte

	closer io.Closer
}

func newTrieOptions(opts []TrieOption) trieOptions {
	var o trieOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

func fromContainer[T any](c *container.Container, codec ValueCodec[T], o trieOptions, closer io.Closer) (*Trie[T], error) {
	ecodec, err := element.ForChunkID(c.ElementTag)
	if err != nil {
		return nil, fmt.Errorf("dastrie: %w: %v", ErrMalformedImage, err)
	}
	arr, err := element.View(ecodec, c.Elements)
	if err != nil {
		return nil, fmt.Errorf("dastrie: %w: %v", ErrMalformedImage, err)
	}
	return &Trie[T]{
		logger:     o.logger,
		valueCodec: codec,
		table:      c.Table,
		da:         arr,
		tail:       c.Tail,
		closer:     closer,
	}, nil
}

// Read parses a trie image from r, copying its contents into memory. The
// returned Trie does not need to be Closed.
func Read[T any](r io.Reader, codec ValueCodec[T], opts ...TrieOption) (*Trie[T], error) {
	o := newTrieOptions(opts)
	c, err := container.Read(r)
	if err != nil {
		return nil, fmt.Errorf("dastrie: %w: %v", ErrMalformedImage, err)
	}
	return fromContainer(c, codec, o, nil)
}

// Load parses a trie image already resident in memory, borrowing data
// rather than copying it. The returned Trie does not need to be Closed.
func Load[T any](data []byte, codec ValueCodec[T], opts ...TrieOption) (*Trie[T], error) {
	o := newTrieOptions(opts)
	c, consumed := container.Parse(data)
	if c == nil || consumed != len(data) {
		return nil, fmt.Errorf("dastrie: %w", ErrMalformedImage)
	}
	return fromContainer(c, codec, o, nil)
}

// Open memory-maps path and parses a trie image directly from the mapping,
// so the element array and tail are read straight out of the page cache
// rather than copied onto the Go heap. The caller must Close the returned
// Trie when done with it.
func Open[T any](path string, codec ValueCodec[T], opts ...TrieOption) (*Trie[T], error) {
	o := newTrieOptions(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dastrie: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("dastrie: stat %s: %w", path, err)
	}
	size := int(fi.Size())
	if size == 0 {
		return nil, fmt.Errorf("dastrie: %s: %w", path, ErrMalformedImage)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("dastrie: mmap %s: %w", path, err)
	}
	closer := &mmapCloser{data: data}

	if o.madvise {
		if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
			o.logger.Debug("dastrie: madvise failed", "path", path, "err", err)
		}
	}

	c, consumed := container.Parse(data)
	if c == nil || consumed != size {
		_ = closer.Close()
		return nil, fmt.Errorf("dastrie: %s: %w", path, ErrMalformedImage)
	}
	return fromContainer(c, codec, o, closer)
}

type mmapCloser struct{ data []byte }

func (c *mmapCloser) Close() error { return unix.Munmap(c.data) }

// Close releases resources held by a Trie opened with Open. It is a no-op
// for tries created with Read or Load.
func (t *Trie[T]) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

func (t *Trie[T]) tailReader() *tail.Reader { return tail.NewReader(t.tail) }

// descend follows the transition for byte c out of the interior node at
// index cur, returning the child index and whether the transition exists.
// It reports false both when cur is a leaf or vacant and when the
// candidate child slot's CHECK byte disagrees with c, which is how a
// double array represents "no such child" without a sentinel value.
func (t *Trie[T]) descend(cur int, c byte) (int, bool) {
	base := t.da.GetBase(cur)
	if base <= 0 {
		return 0, false
	}
	slot := t.table[c]
	next := int(base) + int(slot) + 1
	if next < 0 || next >= t.da.Len() {
		return 0, false
	}
	if t.da.GetCheck(next) != slot {
		return 0, false
	}
	return next, true
}

// Contains reports whether key is present, without decoding its value.
func (t *Trie[T]) Contains(key []byte) (bool, error) {
	_, ok, err := t.Find(key)
	return ok, err
}

// Find looks up key, returning its decoded value and true if present. A
// missing key is reported as (zero, false, nil): NotFound is never an
// error. A non-nil error indicates the trie image itself is inconsistent.
func (t *Trie[T]) Find(key []byte) (T, bool, error) {
	var zero T
	r := t.tailReader()

	cur := initialIndex
	depth := 0
	for {
		c := byteAt(key, depth)
		next, ok := t.descend(cur, c)
		if !ok {
			return zero, false, nil
		}
		base := t.da.GetBase(next)
		if base < 0 {
			remEnd := depth + 1
			if remEnd > len(key) {
				remEnd = len(key)
			}
			remaining := key[remEnd:]
			offset := int(-base)
			r.Seek(offset)
			if !r.MatchString(remaining) {
				return zero, false, nil
			}
			// The value is stored immediately after the postfix's NUL.
			r.Seek(offset + len(remaining) + 1)
			value, err := t.valueCodec.Decode(r)
			if err != nil {
				return zero, false, corrupt(fmt.Sprintf("decode value for key %q: %v", key, err))
			}
			return value, true, nil
		}
		if depth >= len(key) {
			// Consumed the implicit terminator but landed on an interior
			// node: key is only a proper prefix of other stored keys.
			return zero, false, nil
		}
		cur = next
		depth++
	}
}

// Get looks up key and returns its decoded value, or def if key is absent
// or the trie image is found to be inconsistent while looking it up. Use
// Find instead when an error needs to be distinguished from a plain miss.
func (t *Trie[T]) Get(key []byte, def T) T {
	value, ok, err := t.Find(key)
	if err != nil || !ok {
		return def
	}
	return value
}

// Prefix returns a cursor performing common-prefix search: it yields, in
// ascending length order, every key stored in t that is itself a
// byte-prefix of query (including query itself, if it is a stored key).
// The cursor is invalidated by nothing but its own Next calls: it holds no
// reference into the Trie's mutable state beyond t itself.
func (t *Trie[T]) Prefix(query []byte) *Cursor[T] {
	return &Cursor[T]{
		trie:  t,
		query: append([]byte(nil), query...),
		cur:   initialIndex,
	}
}
