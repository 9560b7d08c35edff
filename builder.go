// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package dastrie

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dgryski/go-farm"

	"github.com/go-dastrie/dastrie/internal/baseset"
	"github.com/go-dastrie/dastrie/internal/chartable"
	"github.com/go-dastrie/dastrie/internal/container"
	"github.com/go-dastrie/dastrie/internal/element"
	"github.com/go-dastrie/dastrie/internal/tail"
	"github.com/go-dastrie/dastrie/internal/vlist"
)

const (
	invalidIndex = 0
	initialIndex = 1
)

// BuilderOption configures a Builder.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	logger      *slog.Logger
	progress    func(i, n int)
	elementCode element.Codec
}

// WithBuilderLogger sets an optional logger the builder uses for progress
// and diagnostic messages. If not provided, no logging output is produced.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(o *builderOptions) { o.logger = logger }
}

// WithProgress registers a callback invoked once per leaf written during
// Build, receiving the number of leaves written so far and the total number
// of records.
func WithProgress(fn func(i, n int)) BuilderOption {
	return func(o *builderOptions) { o.progress = fn }
}

// WithElementWidth4 selects the 4-byte element codec, addressing up to
// 0x7FFFFF elements. Use this when the key set is small enough that the
// tighter packing is worth the reduced capacity.
func WithElementWidth4() BuilderOption {
	return func(o *builderOptions) { o.elementCode = element.Codec4{} }
}

// WithElementWidth5 selects the 5-byte element codec, addressing up to
// 0x7FFFFFFF elements. This is the default.
func WithElementWidth5() BuilderOption {
	return func(o *builderOptions) { o.elementCode = element.Codec5{} }
}

// BuildStats summarizes a completed build.
type BuildStats struct {
	ElementCount      int
	UsedCount         int
	UsageRatio        float64
	LeafCount         int
	NodeCount         int
	AverageBaseTrials float64
	TailSize          int
	// TailChecksum is a FarmHash64 digest of the finished tail buffer. It
	// has no role in the serialized format; it lets a caller who persists
	// stats alongside a container detect silent corruption of the tail
	// region without re-validating every leaf.
	TailChecksum uint64
}

type record[T any] struct {
	key   []byte
	value T
}

// Builder constructs an immutable double-array trie from records added in
// strictly ascending key order. A Builder is single-use: once Build has run
// (successfully or not), create a new Builder for another attempt.
type Builder[T any] struct {
	codec      element.Codec
	valueCodec ValueCodec[T]
	logger     *slog.Logger
	progress   func(i, n int)

	records []record[T]
	lastKey []byte
	haveKey bool

	da    *element.Array
	tailW *tail.Writer
	table chartable.Table
	vl    *vlist.List
	used  baseset.Set

	baseTrials int
	leafI      int

	built atomic.Bool
	stats BuildStats
}

// NewBuilder returns a Builder that encodes values with codec.
func NewBuilder[T any](codec ValueCodec[T], opts ...BuilderOption) *Builder[T] {
	var o builderOptions
	o.elementCode = element.Codec5{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder[T]{
		codec:      o.elementCode,
		valueCodec: codec,
		logger:     o.logger,
		progress:   o.progress,
	}
}

// Add buffers one record. Keys must arrive in strictly ascending
// lexicographic byte order with no duplicates; a violation is reported
// immediately as ErrInvalidInput rather than deferred to Build.
func (b *Builder[T]) Add(key []byte, value T) error {
	if b.built.Load() {
		return fmt.Errorf("dastrie: builder already built")
	}
	if b.haveKey && bytes.Compare(key, b.lastKey) <= 0 {
		return fmt.Errorf("%w: key %q does not sort strictly after %q", ErrInvalidInput, key, b.lastKey)
	}
	keyCopy := append([]byte(nil), key...)
	b.records = append(b.records, record[T]{key: keyCopy, value: value})
	b.lastKey = keyCopy
	b.haveKey = true
	return nil
}

// Build arranges the buffered records into a double array and tail, and
// computes summary statistics. It is an error to call Build twice on the
// same Builder.
func (b *Builder[T]) Build() (*BuildStats, error) {
	if b.built.Swap(true) {
		return nil, fmt.Errorf("dastrie: builder already built")
	}

	b.logger.Debug("dastrie: starting build", "records", len(b.records))

	keys := make([][]byte, len(b.records))
	for i, r := range b.records {
		keys[i] = r.key
	}
	b.table = chartable.Build(keys)

	b.da = element.NewArray(b.codec)
	b.tailW = tail.NewWriter()
	b.tailW.WriteUint8(0) // offset 0 always means "no leaf"
	b.vl = vlist.New()

	b.da.Grow(initialIndex + 1)
	b.vl.Expand(initialIndex + 1)
	b.da.SetBase(initialIndex, 1)
	b.vl.Use(initialIndex)

	rootBase, err := b.arrange(0, b.records)
	if err != nil {
		return nil, err
	}
	b.da.SetBase(initialIndex, rootBase)

	b.computeStats()
	b.logger.Debug("dastrie: build complete",
		"elements", b.stats.ElementCount,
		"used", b.stats.UsedCount,
		"leaves", b.stats.LeafCount,
		"nodes", b.stats.NodeCount,
		"tail_bytes", b.stats.TailSize,
	)
	return &b.stats, nil
}

func (b *Builder[T]) computeStats() {
	n := b.da.Len()
	used := 0
	for i := 0; i < n; i++ {
		if b.da.InUse(i) {
			used++
		}
	}
	b.stats.ElementCount = n
	b.stats.UsedCount = used
	if n > 0 {
		b.stats.UsageRatio = float64(used) / float64(n)
	}
	if b.stats.NodeCount > 0 {
		b.stats.AverageBaseTrials = float64(b.baseTrials) / float64(b.stats.NodeCount)
	}
	b.stats.TailSize = b.tailW.Tell()
	b.stats.TailChecksum = farm.Hash64(b.tailW.Bytes())
}

// byteAt returns the byte of key at position depth, or 0 (the implicit
// terminator) if depth has reached or passed the end of key.
func byteAt(key []byte, depth int) byte {
	if depth < len(key) {
		return key[depth]
	}
	return 0
}

type childRun[T any] struct {
	c      byte
	offset int
	recs   []record[T]
}

// arrange is the recursive heart of the build: it assigns a BASE to the
// interior node covering recs at depth, or writes a leaf directly to the
// tail when recs holds exactly one record below the root. The root (depth
// 0) is always an interior node, so even a single-record trie is reached
// by descending one transition from the root.
func (b *Builder[T]) arrange(depth int, recs []record[T]) (int32, error) {
	if len(recs) == 1 && depth > 0 {
		return b.writeLeaf(depth, recs[0])
	}

	children, err := b.partition(depth, recs)
	if err != nil {
		return 0, err
	}

	offFirst := children[0].offset
	offMax := 0
	for _, ch := range children {
		if ch.offset > offMax {
			offMax = ch.offset
		}
	}

	base, err := b.findBase(children, offFirst, offMax)
	if err != nil {
		return 0, err
	}

	b.used.Mark(base)

	// Tentatively reserve every child slot (BASE = 1) before descending, so
	// no descendant arrangement can steal a slot this row already claims.
	for _, ch := range children {
		b.da.SetBase(base+ch.offset, 1)
		b.vl.Use(base + ch.offset)
	}

	for _, ch := range children {
		var childBase int32
		var err error
		if ch.c != 0 {
			childBase, err = b.arrange(depth+1, ch.recs)
		} else {
			if len(ch.recs) != 1 {
				return 0, fmt.Errorf("%w: duplicate key at depth %d", ErrInvalidInput, depth)
			}
			// The NUL byte's leaf is written at the same depth, so its
			// postfix is just the terminator: this is what lets a key that
			// ends exactly here coexist with a sibling key that continues
			// past it.
			childBase, err = b.writeLeaf(depth, ch.recs[0])
		}
		if err != nil {
			return 0, err
		}
		b.da.SetBase(base+ch.offset, childBase)
		b.da.SetCheck(base+ch.offset, byte(ch.offset-1))
	}

	b.stats.NodeCount++
	return int32(base), nil
}

func (b *Builder[T]) writeLeaf(depth int, rec record[T]) (int32, error) {
	offset := b.tailW.Tell()
	if int32(offset) > b.codec.MaxBase() {
		return 0, fmt.Errorf("%w: tail offset %d exceeds codec range", ErrCapacityExceeded, offset)
	}
	b.tailW.WriteCString(rec.key, depth)
	if err := b.valueCodec.Encode(b.tailW, rec.value); err != nil {
		return 0, fmt.Errorf("dastrie: encode value for key %q: %w", rec.key, err)
	}
	b.leafI++
	if b.progress != nil {
		b.progress(b.leafI, len(b.records))
	}
	b.stats.LeafCount++
	return int32(-offset), nil
}

func (b *Builder[T]) partition(depth int, recs []record[T]) ([]childRun[T], error) {
	var children []childRun[T]
	prevC := -1
	i := 0
	for i < len(recs) {
		c := int(byteAt(recs[i].key, depth))
		if c < prevC {
			return nil, fmt.Errorf("%w: records are not sorted in dictionary order at depth %d", ErrInvalidInput, depth)
		}
		j := i + 1
		for j < len(recs) && int(byteAt(recs[j].key, depth)) == c {
			j++
		}
		children = append(children, childRun[T]{
			c:      byte(c),
			offset: int(b.table[c]) + 1,
			recs:   recs[i:j],
		})
		prevC = c
		i = j
	}
	return children, nil
}

// findBase walks the free-slot list looking for a BASE value that (a) is
// not already claimed by another interior node and (b) leaves every child
// slot it would imply currently vacant.
func (b *Builder[T]) findBase(children []childRun[T], offFirst, offMax int) (int, error) {
	base := 0
	index := 0
	for {
		b.baseTrials++
		index = b.vl.Next(index)

		if index < initialIndex+offFirst {
			continue
		}
		base = index - offFirst
		if b.used.IsSet(base) {
			continue
		}

		b.da.Grow(base + offMax + 1)
		b.vl.Expand(base + offMax + 1)

		ok := true
		for _, ch := range children[1:] {
			if b.da.InUse(base + ch.offset) {
				ok = false
				break
			}
		}
		if ok {
			break
		}
	}

	if int32(base+offMax) > b.codec.MaxBase() {
		return 0, fmt.Errorf("%w: base %d + offset %d exceeds codec range", ErrCapacityExceeded, base, offMax)
	}
	return base, nil
}

// WriteTo serializes the built trie as a "SDAT" container and writes it to
// w. Build must have already succeeded.
func (b *Builder[T]) WriteTo(w io.Writer) (int64, error) {
	c, err := b.toContainer()
	if err != nil {
		return 0, err
	}
	return c.WriteTo(w)
}

// Bytes serializes the built trie and returns it as an owned byte slice.
func (b *Builder[T]) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Builder[T]) toContainer() (*container.Container, error) {
	if b.da == nil {
		return nil, fmt.Errorf("dastrie: Build must succeed before serializing")
	}
	return &container.Container{
		RecordCount: uint32(len(b.records)),
		Table:       b.table,
		ElementTag:  b.codec.ChunkID(),
		Elements:    b.da.Bytes(),
		Tail:        b.tailW.Bytes(),
	}, nil
}
