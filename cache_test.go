package brackets

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSameStampHits(t *testing.T) {
	c := NewCache[string, int](nil)

	first := c.All("a.go", 1, "f(x[0])", nil)
	second := c.All("a.go", 1, "ignored on a hit", nil)
	assert.Equal(t, first, second)

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Entries)
	assert.InDelta(t, 0.5, st.HitRate(), 1e-9)
}

func TestCacheStampChangeRescans(t *testing.T) {
	c := NewCache[string, int](nil)

	before := c.All("doc", 1, "(a)", nil)
	require.Len(t, before, 2)

	// Same length, different brackets.
	after := c.All("doc", 2, "[a]", nil)
	require.Len(t, after, 2)
	assert.Equal(t, Square, after[0].Kind)
	assert.Equal(t, uint64(2), c.Stats().Misses)
}

func TestCacheAt(t *testing.T) {
	c := NewCache[int, uint64](nil)
	text := "if (a[i]) {}"

	m, ok := c.At(1, 7, text, 5, nil)
	require.True(t, ok)
	assert.Equal(t, Mark{Kind: Square, Offset: 5, Open: true, Level: 0, Match: 7}, m)

	_, ok = c.At(1, 7, text, 0, nil)
	assert.False(t, ok, "no bracket at offset 0")
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestCacheKeysAreIndependent(t *testing.T) {
	c := NewCache[int, int](nil)
	a := c.All(1, 1, "()", nil)
	b := c.All(2, 1, "[]", nil)
	assert.Equal(t, Round, a[0].Kind)
	assert.Equal(t, Square, b[0].Kind)
	assert.Equal(t, 2, c.Stats().Entries)
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := NewCache[int, int](nil)
	c.All(1, 1, "()", nil)
	c.All(2, 1, "()", nil)
	c.All(3, 1, "()", nil)

	c.Invalidate(1)
	c.Invalidate(42)
	assert.Equal(t, 2, c.Stats().Entries)

	c.All(2, 1, "()", nil)
	assert.Equal(t, uint64(1), c.Stats().Hits, "other keys survive Invalidate")

	c.Clear()
	assert.Equal(t, 0, c.Stats().Entries)

	c.All(2, 1, "()", nil)
	assert.Equal(t, uint64(4), c.Stats().Misses)
}

func TestCacheConcurrentSameKey(t *testing.T) {
	c := NewCache[string, int](nil)
	text := "func f() { g([]int{1, 2}) }"
	want := Scan(text, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, c.All("shared", 1, text, nil))
			}
		}()
	}
	wg.Wait()

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Misses, "concurrent misses on one revision scan once")
	assert.Equal(t, uint64(32*100-1), st.Hits)
}

func TestCacheConcurrentRevisions(t *testing.T) {
	c := NewCache[int, int](nil)
	texts := []string{"()", "[[]]", "{{{}}}"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				rev := (i + j) % len(texts)
				marks := c.All(0, rev, texts[rev], nil)
				// Whatever revision won, the entry is complete.
				assert.Len(t, marks, len(texts[rev]))
			}
		}(i)
	}
	wg.Wait()
}

func TestCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := NewCache[int, int](m)

	c.All(1, 1, "()", nil)
	c.All(1, 1, "()", nil)
	c.All(2, 1, "()", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheEntries))

	c.Invalidate(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEntries))
}
