package dastrie

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomKeySet generates n unique random lowercase byte strings, sorted.
func randomKeySet(rng *rand.Rand, n, maxLen int) []string {
	seen := make(map[string]bool, n)
	var keys []string
	for len(keys) < n {
		l := rng.Intn(maxLen + 1)
		buf := make([]byte, l)
		for i := range buf {
			buf[i] = byte('a' + rng.Intn(4))
		}
		s := string(buf)
		if seen[s] {
			continue
		}
		seen[s] = true
		keys = append(keys, s)
	}
	sort.Strings(keys)
	return keys
}

func buildFromKeys(t testing.TB, keys []string) (*Builder[int64], map[string]int64) {
	pairs := make(map[string]int64, len(keys))
	b := NewBuilder[int64](Int64Codec{})
	for i, k := range keys {
		v := int64(i)
		pairs[k] = v
		require.NoError(t, b.Add([]byte(k), v))
	}
	return b, pairs
}

func TestPropertyRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		keys := randomKeySet(rng, 1+rng.Intn(30), 6)
		b, pairs := buildFromKeys(t, keys)
		_, err := b.Build()
		require.NoError(t, err)
		data, err := b.Bytes()
		require.NoError(t, err)
		tr, err := Load[int64](data, Int64Codec{})
		require.NoError(t, err)

		for k, v := range pairs {
			got, ok, err := tr.Find([]byte(k))
			require.NoError(t, err)
			require.True(t, ok, "trial %d: key %q should be found", trial, k)
			require.Equal(t, v, got)
		}

		for _, absent := range []string{"zzzzzz", "nope", "aaaaaaaaaaaaaaaa"} {
			if _, in := pairs[absent]; in {
				continue
			}
			_, ok, err := tr.Find([]byte(absent))
			require.NoError(t, err)
			require.False(t, ok)
		}
	}
}

func TestPropertyPrefixEnumerationMatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for trial := 0; trial < 15; trial++ {
		keys := randomKeySet(rng, 1+rng.Intn(20), 5)
		b, pairs := buildFromKeys(t, keys)
		_, err := b.Build()
		require.NoError(t, err)
		data, err := b.Bytes()
		require.NoError(t, err)
		tr, err := Load[int64](data, Int64Codec{})
		require.NoError(t, err)

		for _, q := range keys {
			want := map[string]int64{}
			for k, v := range pairs {
				if len(k) <= len(q) && q[:len(k)] == k {
					want[k] = v
				}
			}
			got := map[string]int64{}
			cur := tr.Prefix([]byte(q))
			for cur.Next() {
				got[string(cur.Key())] = cur.Value()
			}
			require.NoError(t, cur.Err())
			require.Equal(t, want, got, "trial %d query %q", trial, q)
		}
	}
}

func TestPropertyBuildIsIdempotent(t *testing.T) {
	keys := []string{"alpha", "beta", "delta", "gamma"}
	b1, _ := buildFromKeys(t, keys)
	_, err := b1.Build()
	require.NoError(t, err)
	data1, err := b1.Bytes()
	require.NoError(t, err)

	b2, _ := buildFromKeys(t, keys)
	_, err = b2.Build()
	require.NoError(t, err)
	data2, err := b2.Bytes()
	require.NoError(t, err)

	require.Equal(t, data1, data2)
}

func TestScenarioTenNumerals(t *testing.T) {
	pairs := map[string]int64{
		"eight": 8, "five": 5, "four": 4, "nine": 9, "one": 1,
		"seven": 7, "six": 6, "ten": 10, "three": 3, "two": 2,
	}
	tr := buildIntTrie(t, pairs)

	v, ok, err := tr.Find([]byte("one"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), v)

	_, ok, err = tr.Find([]byte("other"))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = tr.Contains([]byte("ten"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tr.Contains([]byte("eleven"))
	require.NoError(t, err)
	require.False(t, ok)

	got, err := drain(tr.Prefix([]byte("eighteen")))
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"eight": 8}, got)
}

func TestScenarioEmptyKey(t *testing.T) {
	b := NewBuilder[int64](Int64Codec{})
	require.NoError(t, b.Add([]byte(""), 0))
	require.NoError(t, b.Add([]byte("x"), 1))
	_, err := b.Build()
	require.NoError(t, err)
	data, err := b.Bytes()
	require.NoError(t, err)
	tr, err := Load[int64](data, Int64Codec{})
	require.NoError(t, err)

	v, ok, err := tr.Find([]byte(""))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(0), v)

	v, ok, err = tr.Find([]byte("x"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), v)

	var keys []string
	cur := tr.Prefix([]byte("xyz"))
	for cur.Next() {
		keys = append(keys, string(cur.Key()))
	}
	require.NoError(t, cur.Err())
	require.Equal(t, []string{"", "x"}, keys)
}

func TestScenarioPrefixNesting(t *testing.T) {
	pairs := map[string]int64{"a": 1, "ab": 2, "abc": 3}
	tr := buildIntTrie(t, pairs)

	ok, err := tr.Contains([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = tr.Contains([]byte("ab"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = tr.Contains([]byte("abc"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = tr.Contains([]byte("abcd"))
	require.NoError(t, err)
	require.False(t, ok)

	var keys []string
	cur := tr.Prefix([]byte("abcdef"))
	for cur.Next() {
		keys = append(keys, string(cur.Key()))
	}
	require.NoError(t, cur.Err())
	require.Equal(t, []string{"a", "ab", "abc"}, keys)
}

func TestScenarioBothCodecsEquivalent(t *testing.T) {
	pairs := map[string]int64{"cat": 1, "car": 2, "cart": 3, "dog": 4}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	build := func(opt BuilderOption) *Trie[int64] {
		b := NewBuilder[int64](Int64Codec{}, opt)
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

	tr4 := build(WithElementWidth4())
	tr5 := build(WithElementWidth5())
	for k, want := range pairs {
		v4, ok4, err := tr4.Find([]byte(k))
		require.NoError(t, err)
		v5, ok5, err := tr5.Find([]byte(k))
		require.NoError(t, err)
		require.Equal(t, ok4, ok5)
		require.True(t, ok4)
		require.Equal(t, want, v4)
		require.Equal(t, want, v5)
	}
}
