package element

import "fmt"

// Array is a flat, indexed sequence of encoded elements. During a build it
// owns a growable backing buffer; when reading a serialized trie it instead
// borrows (or owns a copy of) the chunk bytes produced by a build.
//
// The double array is deliberately pointer-free: children are always
// computed arithmetically from a parent's BASE plus a table offset, never
// stored as references, so this type can wrap a borrowed, memory-mapped
// buffer just as easily as one it grew itself.
type Array struct {
	codec Codec
	buf   []byte
}

// NewArray returns an empty, owned Array for the given codec.
func NewArray(codec Codec) *Array {
	return &Array{codec: codec}
}

// View wraps existing bytes (owned or borrowed by the caller) as an Array,
// validating that the length is a whole number of elements.
func View(codec Codec, data []byte) (*Array, error) {
	size := codec.Size()
	if len(data)%size != 0 {
		return nil, fmt.Errorf("element: chunk length %d is not a multiple of element size %d", len(data), size)
	}
	return &Array{codec: codec, buf: data}, nil
}

// Codec returns the element codec this array was constructed with.
func (a *Array) Codec() Codec { return a.codec }

// Len reports the number of elements currently stored.
func (a *Array) Len() int { return len(a.buf) / a.codec.Size() }

// Bytes returns the raw backing buffer.
func (a *Array) Bytes() []byte { return a.buf }

// Grow extends the array with vacant (default) elements until it holds at
// least n elements. It is a no-op if the array is already at least that
// long.
func (a *Array) Grow(n int) {
	size := a.codec.Size()
	if a.Len() >= n {
		return
	}
	def := a.codec.Default()
	needed := n*size - len(a.buf)
	for needed > 0 {
		a.buf = append(a.buf, def...)
		needed -= size
	}
}

// elem returns the slice of the backing buffer holding element i. Callers
// must ensure i is in range (e.g. via Grow).
func (a *Array) elem(i int) []byte {
	size := a.codec.Size()
	off := i * size
	return a.buf[off : off+size]
}

func (a *Array) GetBase(i int) int32 { return a.codec.GetBase(a.elem(i)) }

func (a *Array) GetCheck(i int) uint8 { return a.codec.GetCheck(a.elem(i)) }

func (a *Array) SetBase(i int, v int32) { a.codec.SetBase(a.elem(i), v) }

func (a *Array) SetCheck(i int, v uint8) { a.codec.SetCheck(a.elem(i), v) }

// InUse reports whether element i exists and has a non-zero BASE (i.e. is
// either an interior node or a leaf, not vacant).
func (a *Array) InUse(i int) bool {
	return i < a.Len() && a.GetBase(i) != 0
}
