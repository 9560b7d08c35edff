package dastrie

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildIntTrie(t testing.TB, pairs map[string]int64) *Trie[int64] {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := NewBuilder[int64](Int64Codec{})
	for _, k := range keys {
		require.NoError(t, b.Add([]byte(k), pairs[k]))
	}
	_, err := b.Build()
	require.NoError(t, err)
	data, err := b.Bytes()
	require.NoError(t, err)
	tr, err := Load[int64](data, Int64Codec{})
	require.NoError(t, err)
	return tr
}

var fruitPrices = map[string]int64{
	"apple":       1,
	"apricot":     2,
	"banana":      3,
	"band":        4,
	"bandana":     5,
	"cherry":      6,
	"cherrystone": 7,
}

func TestFindExistingKeys(t *testing.T) {
	tr := buildIntTrie(t, fruitPrices)
	for k, want := range fruitPrices {
		got, ok, err := tr.Find([]byte(k))
		require.NoError(t, err)
		require.True(t, ok, "key %q", k)
		require.Equal(t, want, got)
	}
}

func TestFindMissingKeysIsNotAnError(t *testing.T) {
	tr := buildIntTrie(t, fruitPrices)
	for _, k := range []string{"", "ap", "bandanas", "cherries", "zzz"} {
		_, ok, err := tr.Find([]byte(k))
		require.NoError(t, err)
		require.False(t, ok, "key %q should be absent", k)
	}
}

func TestContains(t *testing.T) {
	tr := buildIntTrie(t, fruitPrices)
	ok, err := tr.Contains([]byte("banana"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tr.Contains([]byte("ban"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetReturnsValueOrDefault(t *testing.T) {
	tr := buildIntTrie(t, fruitPrices)

	require.Equal(t, int64(1), tr.Get([]byte("apple"), -1))
	require.Equal(t, int64(-1), tr.Get([]byte("no-such-key"), -1))
}

func TestReadFromReader(t *testing.T) {
	keys := map[string]int64{"a": 1, "ab": 2, "abc": 3}
	b := NewBuilder[int64](Int64Codec{})
	for _, k := range []string{"a", "ab", "abc"} {
		require.NoError(t, b.Add([]byte(k), keys[k]))
	}
	_, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = b.WriteTo(&buf)
	require.NoError(t, err)

	tr, err := Read[int64](&buf, Int64Codec{})
	require.NoError(t, err)
	v, ok, err := tr.Find([]byte("ab"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), v)
}

func TestLoadRejectsMalformedImage(t *testing.T) {
	_, err := Load[int64]([]byte("not a trie image"), Int64Codec{})
	require.ErrorIs(t, err, ErrMalformedImage)
}

func TestReadRejectsTruncatedStream(t *testing.T) {
	b := NewBuilder[int64](Int64Codec{})
	require.NoError(t, b.Add([]byte("a"), 1))
	_, err := b.Build()
	require.NoError(t, err)
	data, err := b.Bytes()
	require.NoError(t, err)

	_, err = Read[int64](bytes.NewReader(data[:len(data)-1]), Int64Codec{})
	require.ErrorIs(t, err, ErrMalformedImage)

	_, err = Read[int64](bytes.NewReader([]byte("nope")), Int64Codec{})
	require.ErrorIs(t, err, ErrMalformedImage)
}

// A single-key trie still has an interior root with one child transition,
// so Find reaches the key by descending once from the root like any other.
func TestSingleKeyTrieIsReachableByFind(t *testing.T) {
	tr := buildIntTrie(t, map[string]int64{"solo": 42})
	v, ok, err := tr.Find([]byte("solo"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(42), v)
}
