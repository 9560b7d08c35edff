package element

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodec4RoundTrip(t *testing.T) {
	c := Codec4{}
	elem := make([]byte, c.Size())
	for _, v := range []int32{0, 1, -1, 12345, -12345, c.MaxBase(), -c.MaxBase()} {
		c.SetBase(elem, v)
		require.Equal(t, v, c.GetBase(elem), "base round trip for %d", v)
	}
	c.SetCheck(elem, 0xAB)
	require.Equal(t, uint8(0xAB), c.GetCheck(elem))
}

func TestCodec4BaseAndCheckIndependent(t *testing.T) {
	c := Codec4{}
	elem := make([]byte, c.Size())
	c.SetBase(elem, 9000)
	c.SetCheck(elem, 42)
	require.Equal(t, int32(9000), c.GetBase(elem))
	require.Equal(t, uint8(42), c.GetCheck(elem))
	c.SetBase(elem, -1)
	require.Equal(t, uint8(42), c.GetCheck(elem), "SetBase must not disturb CHECK")
}

func TestCodec5RoundTrip(t *testing.T) {
	c := Codec5{}
	elem := make([]byte, c.Size())
	for _, v := range []int32{0, 1, -1, 1 << 20, -(1 << 20), c.MaxBase()} {
		c.SetBase(elem, v)
		require.Equal(t, v, c.GetBase(elem), "base round trip for %d", v)
	}
	c.SetCheck(elem, 0xCD)
	require.Equal(t, uint8(0xCD), c.GetCheck(elem))
}

func TestNewAndForChunkID(t *testing.T) {
	c4, err := New(4)
	require.NoError(t, err)
	require.Equal(t, [4]byte{'S', 'D', 'A', '4'}, c4.ChunkID())

	c5, err := New(5)
	require.NoError(t, err)
	require.Equal(t, [4]byte{'S', 'D', 'A', '5'}, c5.ChunkID())

	_, err = New(6)
	require.Error(t, err)

	got, err := ForChunkID([4]byte{'S', 'D', 'A', '4'})
	require.NoError(t, err)
	require.IsType(t, Codec4{}, got)

	_, err = ForChunkID([4]byte{'X', 'X', 'X', 'X'})
	require.Error(t, err)
}

func TestDefaultIsVacant(t *testing.T) {
	for _, c := range []Codec{Codec4{}, Codec5{}} {
		def := c.Default()
		require.Equal(t, c.Size(), len(def))
		require.Equal(t, int32(0), c.GetBase(def))
		require.Equal(t, uint8(0), c.GetCheck(def))
	}
}
