// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tail

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a positional view over a tail buffer. It may borrow its backing
// bytes (e.g. a memory-mapped container) or own a private copy; either way
// it never mutates the buffer it was given.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps buf (borrowed as-is; the caller decides whether to hand
// over an owned copy).
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len reports the size in bytes of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Seek moves the read position. offset == len(buf) is the valid one-past-end
// position (a zero-width read starting there succeeds); anything else
// outside the buffer is clamped to a no-op, matching dastrie.h's
// itail::seekg, which silently ignores out-of-range offsets.
func (r *Reader) Seek(offset int) {
	if offset >= 0 && offset <= len(r.buf) {
		r.off = offset
	}
}

// Tell reports the current read position.
func (r *Reader) Tell() int { return r.off }

// Strlen returns the number of bytes until the next NUL starting at the
// current position, not including the NUL itself. It returns -1 if no NUL
// is found before the end of the buffer (a malformed tail).
func (r *Reader) Strlen() int {
	i := bytes.IndexByte(r.buf[r.off:], 0)
	return i
}

// MatchString reports whether the NUL-terminated string stored at the
// current position is byte-for-byte identical to str (str itself is not
// NUL-terminated; the comparison accounts for the trailing NUL implicitly).
func (r *Reader) MatchString(str []byte) bool {
	n := len(str)
	if r.off+n+1 > len(r.buf) {
		return false
	}
	if !bytes.Equal(r.buf[r.off:r.off+n], str) {
		return false
	}
	return r.buf[r.off+n] == 0
}

// MatchStringPartial reports whether the NUL-terminated string stored at the
// current position is a byte-for-byte prefix of str. This is the primitive
// prefix enumeration relies on.
func (r *Reader) MatchStringPartial(str []byte) bool {
	length := r.Strlen()
	if length < 0 || length > len(str) {
		return false
	}
	if r.off+length > len(r.buf) {
		return false
	}
	return bytes.Equal(r.buf[r.off:r.off+length], str[:length])
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, fmt.Errorf("tail: read past end of buffer (off=%d, n=%d, len=%d)", r.off, n, len(r.buf))
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadCString reads a NUL-terminated string starting at the current
// position, advancing past the terminator, and returns it without the NUL.
func (r *Reader) ReadCString() ([]byte, error) {
	n := r.Strlen()
	if n < 0 {
		return nil, fmt.Errorf("tail: unterminated string at offset %d", r.off)
	}
	s, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadBytes(1); err != nil {
		return nil, err
	}
	return s, nil
}
