// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package container implements the chunked binary envelope a built trie is
// serialized into: an outer "SDAT" chunk enclosing a fixed character table
// chunk, an element-array chunk, and a tail chunk.
package container

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// ChunkHeaderSize is the size, in bytes, of the generic 8-byte inner
	// chunk header (4-byte ASCII tag + 4-byte little-endian size, size
	// inclusive of the header itself).
	ChunkHeaderSize = 8
	// SDATHeaderSize is the size, in bytes, of the outer "SDAT" header:
	// the generic 8-byte chunk header plus a 4-byte self-size (always
	// SDATHeaderSize) and a 4-byte record count.
	SDATHeaderSize = 16

	NumChars = 256
)

var (
	tagSDAT = [4]byte{'S', 'D', 'A', 'T'}
	tagTBLU = [4]byte{'T', 'B', 'L', 'U'}
	tagTAIL = [4]byte{'T', 'A', 'I', 'L'}
)

// Container is the decoded form of a serialized trie image.
type Container struct {
	RecordCount uint32
	Table       [NumChars]byte
	ElementTag  [4]byte // "SDA4" or "SDA5"
	Elements    []byte  // raw element-array bytes
	Tail        []byte  // raw tail bytes
}

func putChunkHeader(w io.Writer, tag [4]byte, size uint32) error {
	var hdr [ChunkHeaderSize]byte
	copy(hdr[:4], tag[:])
	binary.LittleEndian.PutUint32(hdr[4:8], size)
	_, err := w.Write(hdr[:])
	return err
}

// WriteTo serializes c as a "SDAT" container and writes it to w, returning
// the number of bytes written.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	tbluSize := uint32(ChunkHeaderSize + NumChars)
	sdaSize := uint32(ChunkHeaderSize + len(c.Elements))
	tailSize := uint32(ChunkHeaderSize + len(c.Tail))
	totalSize := uint32(SDATHeaderSize) + tbluSize + sdaSize + tailSize

	var written int64

	if err := putChunkHeader(w, tagSDAT, totalSize); err != nil {
		return written, fmt.Errorf("container: write SDAT header: %w", err)
	}
	written += ChunkHeaderSize

	var rest [8]byte
	binary.LittleEndian.PutUint32(rest[0:4], uint32(SDATHeaderSize))
	binary.LittleEndian.PutUint32(rest[4:8], c.RecordCount)
	if _, err := w.Write(rest[:]); err != nil {
		return written, fmt.Errorf("container: write SDAT body: %w", err)
	}
	written += 8

	if err := putChunkHeader(w, tagTBLU, tbluSize); err != nil {
		return written, fmt.Errorf("container: write TBLU header: %w", err)
	}
	written += ChunkHeaderSize
	if _, err := w.Write(c.Table[:]); err != nil {
		return written, fmt.Errorf("container: write TBLU body: %w", err)
	}
	written += int64(NumChars)

	if err := putChunkHeader(w, c.ElementTag, sdaSize); err != nil {
		return written, fmt.Errorf("container: write %s header: %w", c.ElementTag, err)
	}
	written += ChunkHeaderSize
	if _, err := w.Write(c.Elements); err != nil {
		return written, fmt.Errorf("container: write %s body: %w", c.ElementTag, err)
	}
	written += int64(len(c.Elements))

	if err := putChunkHeader(w, tagTAIL, tailSize); err != nil {
		return written, fmt.Errorf("container: write TAIL header: %w", err)
	}
	written += ChunkHeaderSize
	if _, err := w.Write(c.Tail); err != nil {
		return written, fmt.Errorf("container: write TAIL body: %w", err)
	}
	written += int64(len(c.Tail))

	return written, nil
}

// Parse decodes a container in place from block, returning the container
// and the number of bytes consumed. A return of zero bytes consumed
// indicates malformed input (too short, bad outer tag, inconsistent
// sizes); callers should treat that as the "MalformedImage" error kind.
// Chunks with unrecognized tags are skipped rather than rejected.
func Parse(block []byte) (*Container, int) {
	if len(block) < SDATHeaderSize {
		return nil, 0
	}
	if [4]byte(block[0:4]) != tagSDAT {
		return nil, 0
	}
	totalSize := binary.LittleEndian.Uint32(block[4:8])
	selfSize := binary.LittleEndian.Uint32(block[8:12])
	if selfSize != SDATHeaderSize {
		return nil, 0
	}
	if uint64(totalSize) > uint64(len(block)) || totalSize < SDATHeaderSize {
		return nil, 0
	}
	recordCount := binary.LittleEndian.Uint32(block[12:16])

	c := &Container{RecordCount: recordCount}

	p := SDATHeaderSize
	last := int(totalSize)
	haveTable, haveElements, haveTail := false, false, false
	for p < last {
		if p+ChunkHeaderSize > last {
			return nil, 0
		}
		var tag [4]byte
		copy(tag[:], block[p:p+4])
		size := binary.LittleEndian.Uint32(block[p+4 : p+8])
		if size < ChunkHeaderSize || p+int(size) > last {
			return nil, 0
		}
		data := block[p+ChunkHeaderSize : p+int(size)]

		switch tag {
		case tagTBLU:
			if len(data) == NumChars {
				copy(c.Table[:], data)
				haveTable = true
			}
		case tagTAIL:
			c.Tail = data
			haveTail = true
		default:
			if isElementTag(tag) {
				c.ElementTag = tag
				c.Elements = data
				haveElements = true
			}
			// Unknown chunk tags are skipped, not rejected.
		}

		p += int(size)
	}

	if !haveTable || !haveElements || !haveTail {
		return nil, 0
	}

	return c, last
}

func isElementTag(tag [4]byte) bool {
	return tag == [4]byte{'S', 'D', 'A', '4'} || tag == [4]byte{'S', 'D', 'A', '5'}
}

// Read reads an entire "SDAT" container from r, first reading the generic
// 8-byte outer chunk header to learn the total size, then the remainder. On
// any failure it rewinds r (when r is an io.Seeker) to its original
// position, matching dastrie.h's read(istream)/assign(block,size) split.
func Read(r io.Reader) (*Container, error) {
	seeker, canSeek := r.(io.Seeker)
	var startPos int64
	if canSeek {
		var err error
		startPos, err = seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			canSeek = false
		}
	}

	rewind := func() {
		if canSeek {
			_, _ = seeker.Seek(startPos, io.SeekStart)
		}
	}

	var hdr [ChunkHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		rewind()
		return nil, fmt.Errorf("container: read outer header: %w", err)
	}
	if [4]byte(hdr[0:4]) != tagSDAT {
		rewind()
		return nil, fmt.Errorf("container: bad outer tag %q", hdr[0:4])
	}
	totalSize := binary.LittleEndian.Uint32(hdr[4:8])
	if totalSize < ChunkHeaderSize {
		rewind()
		return nil, fmt.Errorf("container: implausible total size %d", totalSize)
	}

	block := make([]byte, totalSize)
	copy(block, hdr[:])
	if _, err := io.ReadFull(r, block[ChunkHeaderSize:]); err != nil {
		rewind()
		return nil, fmt.Errorf("container: read body: %w", err)
	}

	c, consumed := Parse(block)
	if consumed != int(totalSize) {
		rewind()
		return nil, fmt.Errorf("container: malformed image")
	}
	return c, nil
}
