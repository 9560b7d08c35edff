// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package tail implements the append-only byte region that holds leaf
// postfixes and serialized values, and the positional reader used to decode
// them back out at query time.
package tail

import (
	"encoding/binary"
	"math"
)

// Writer is an append-only buffer. Builders write leaf postfixes (NUL
// terminated) followed by the caller's serialized value at the offset
// returned by Tell.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Tell reports the current length of the buffer — the offset at which the
// next write will land.
func (w *Writer) Tell() int { return len(w.buf) }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteCString appends s[skip:] followed by a terminating NUL, matching
// dastrie.h's write_string(str, offset): the skipped prefix is the portion
// of a key already consumed by the interior nodes above a leaf.
func (w *Writer) WriteCString(s []byte, skip int) {
	w.buf = append(w.buf, s[skip:]...)
	w.buf = append(w.buf, 0)
}

func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }
