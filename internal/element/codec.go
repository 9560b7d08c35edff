// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package element packs and unpacks the (BASE, CHECK) pairs that make up a
// double array. Two concrete widths are provided; both operate on raw byte
// slices so the in-memory and on-disk representations are always identical.
package element

import (
	"encoding/binary"
	"fmt"
)

// Codec describes how a single double-array element is packed into bytes.
// Implementations never hold per-call state: Size, ChunkID, MinBase, and
// MaxBase are fixed properties of the width chosen for a build.
type Codec interface {
	// Size is the number of bytes occupied by one element.
	Size() int
	// ChunkID is the ASCII tag written for this codec's element chunk.
	ChunkID() [4]byte
	// MinBase is the smallest BASE value a node may be assigned.
	MinBase() int32
	// MaxBase is the largest BASE (or largest tail offset) this codec can
	// address.
	MaxBase() int32
	// Default returns the bytes of a vacant element (BASE == 0, CHECK == 0).
	Default() []byte
	// GetBase reads the BASE value out of an encoded element.
	GetBase(elem []byte) int32
	// GetCheck reads the CHECK byte out of an encoded element.
	GetCheck(elem []byte) uint8
	// SetBase overwrites the BASE value of an encoded element, leaving CHECK
	// untouched.
	SetBase(elem []byte, v int32)
	// SetCheck overwrites the CHECK byte of an encoded element, leaving BASE
	// untouched.
	SetCheck(elem []byte, v uint8)
}

// New returns the codec for the given element width in bytes (4 or 5).
func New(width int) (Codec, error) {
	switch width {
	case 4:
		return Codec4{}, nil
	case 5:
		return Codec5{}, nil
	default:
		return nil, fmt.Errorf("element: unsupported width %d (want 4 or 5)", width)
	}
}

// ForChunkID returns the codec matching an on-disk chunk tag, e.g. "SDA4".
func ForChunkID(tag [4]byte) (Codec, error) {
	switch tag {
	case (Codec4{}).ChunkID():
		return Codec4{}, nil
	case (Codec5{}).ChunkID():
		return Codec5{}, nil
	default:
		return nil, fmt.Errorf("element: unknown element chunk id %q", tag)
	}
}

// Codec4 packs BASE into the high 24 bits of a 32-bit little-endian word and
// CHECK into the low byte. BASE is restricted to [1, 0x7FFFFF] for interior
// nodes (and the corresponding negative range for leaf tail offsets).
type Codec4 struct{}

func (Codec4) Size() int { return 4 }

func (Codec4) ChunkID() [4]byte { return [4]byte{'S', 'D', 'A', '4'} }

func (Codec4) MinBase() int32 { return 1 }

func (Codec4) MaxBase() int32 { return 0x007FFFFF }

func (Codec4) Default() []byte { return []byte{0, 0, 0, 0} }

func (Codec4) GetBase(elem []byte) int32 {
	raw := int32(binary.LittleEndian.Uint32(elem[:4]))
	return raw >> 8
}

func (Codec4) GetCheck(elem []byte) uint8 {
	return elem[0]
}

func (Codec4) SetBase(elem []byte, v int32) {
	low := binary.LittleEndian.Uint32(elem[:4]) & 0xFF
	raw := (uint32(v) << 8) | low
	binary.LittleEndian.PutUint32(elem[:4], raw)
}

func (Codec4) SetCheck(elem []byte, v uint8) {
	elem[0] = v
}

// Codec5 packs a full 32-bit little-endian BASE into the first four bytes
// and stores CHECK in a fifth, independent byte. This is the wider of the
// two encodings, addressing up to 0x7FFFFFFF elements.
type Codec5 struct{}

func (Codec5) Size() int { return 5 }

func (Codec5) ChunkID() [4]byte { return [4]byte{'S', 'D', 'A', '5'} }

func (Codec5) MinBase() int32 { return 1 }

func (Codec5) MaxBase() int32 { return 0x7FFFFFFF }

func (Codec5) Default() []byte { return []byte{0, 0, 0, 0, 0} }

func (Codec5) GetBase(elem []byte) int32 {
	return int32(binary.LittleEndian.Uint32(elem[:4]))
}

func (Codec5) GetCheck(elem []byte) uint8 {
	return elem[4]
}

func (Codec5) SetBase(elem []byte, v int32) {
	binary.LittleEndian.PutUint32(elem[:4], uint32(v))
}

func (Codec5) SetCheck(elem []byte, v uint8) {
	elem[4] = v
}
