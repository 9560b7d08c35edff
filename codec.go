// Copyright 2024 The dastrie Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package dastrie

import (
	"github.com/go-dastrie/dastrie/internal/tail"
)

// ValueCodec encodes and decodes the values associated with keys. Widths
// must be deterministic: tail.Writer.Tell() after Encode must always have
// advanced by the same amount for equal inputs, since that position is what
// lets a later leaf be written immediately afterward without ambiguity.
type ValueCodec[T any] interface {
	Encode(w *tail.Writer, v T) error
	Decode(r *tail.Reader) (T, error)
}

// EmptyCodec serializes nothing, letting a Trie behave like a set of keys
// rather than a map — the Go equivalent of dastrie.h's empty_type.
type EmptyCodec struct{}

func (EmptyCodec) Encode(w *tail.Writer, v struct{}) error { return nil }

func (EmptyCodec) Decode(r *tail.Reader) (struct{}, error) { return struct{}{}, nil }

// Int32Codec serializes a fixed-width little-endian int32.
type Int32Codec struct{}

func (Int32Codec) Encode(w *tail.Writer, v int32) error {
	w.WriteInt32(v)
	return nil
}

func (Int32Codec) Decode(r *tail.Reader) (int32, error) {
	return r.ReadInt32()
}

// Uint32Codec serializes a fixed-width little-endian uint32.
type Uint32Codec struct{}

func (Uint32Codec) Encode(w *tail.Writer, v uint32) error {
	w.WriteUint32(v)
	return nil
}

func (Uint32Codec) Decode(r *tail.Reader) (uint32, error) {
	return r.ReadUint32()
}

// Int64Codec serializes a fixed-width little-endian int64.
type Int64Codec struct{}

func (Int64Codec) Encode(w *tail.Writer, v int64) error {
	w.WriteInt64(v)
	return nil
}

func (Int64Codec) Decode(r *tail.Reader) (int64, error) {
	return r.ReadInt64()
}

// Float64Codec serializes a fixed-width little-endian float64.
type Float64Codec struct{}

func (Float64Codec) Encode(w *tail.Writer, v float64) error {
	w.WriteFloat64(v)
	return nil
}

func (Float64Codec) Decode(r *tail.Reader) (float64, error) {
	return r.ReadFloat64()
}

// BytesCodec serializes an arbitrary byte slice as a 32-bit length prefix
// followed by the raw bytes.
type BytesCodec struct{}

func (BytesCodec) Encode(w *tail.Writer, v []byte) error {
	w.WriteUint32(uint32(len(v)))
	w.WriteBytes(v)
	return nil
}

func (BytesCodec) Decode(r *tail.Reader) ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

// StringCodec serializes a string the same way BytesCodec serializes a
// byte slice: a 32-bit length prefix followed by the raw bytes.
type StringCodec struct{}

func (StringCodec) Encode(w *tail.Writer, v string) error {
	w.WriteUint32(uint32(len(v)))
	w.WriteBytes([]byte(v))
	return nil
}

func (StringCodec) Decode(r *tail.Reader) (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
