package brackets

import (
	"sync"
	"sync/atomic"
)

// entry is the published scan result for one document revision.  It is
// never modified after it is stored.
type entry[S comparable] struct {
	stamp    S
	marks    []Mark
	byOffset map[int]int // offset -> index into marks
}

func newEntry[S comparable](stamp S, marks []Mark) *entry[S] {
	byOffset := make(map[int]int, len(marks))
	for i, m := range marks {
		byOffset[m.Offset] = i
	}
	return &entry[S]{stamp: stamp, marks: marks, byOffset: byOffset}
}

// slot holds the current entry of one document.  cur is read without
// locking; mu serializes recomputation so concurrent misses on the same
// document scan once.
type slot[S comparable] struct {
	mu  sync.Mutex
	cur atomic.Pointer[entry[S]]
}

// Cache memoizes Scan results per document.  K identifies a document and S
// is its revision stamp, supplied by the caller on every query; an entry is
// valid only while the stored stamp equals the caller's.  The zero Cache is
// not usable; create one with NewCache.
//
// Cache is safe for concurrent use.  Readers of a document observe either
// its previous or its new complete entry, never a partial one.
type Cache[K comparable, S comparable] struct {
	slots   sync.Map // K -> *slot[S]
	n       atomic.Int64
	hits    atomic.Uint64
	misses  atomic.Uint64
	metrics *Metrics
}

// NewCache returns an empty Cache reporting to m, which may be nil.
func NewCache[K comparable, S comparable](m *Metrics) *Cache[K, S] {
	return &Cache[K, S]{metrics: m}
}

// At returns the mark at rune offset off of document key at revision stamp,
// scanning text with admit if the cached entry is missing or stale.
func (c *Cache[K, S]) At(key K, stamp S, text string, off int, admit AdmitFunc) (Mark, bool) {
	e := c.lookup(key, stamp, text, admit)
	i, ok := e.byOffset[off]
	if !ok {
		return Mark{}, false
	}
	return e.marks[i], true
}

// All returns every mark of document key at revision stamp, in offset
// order.  The slice is shared with other callers and must not be modified.
func (c *Cache[K, S]) All(key K, stamp S, text string, admit AdmitFunc) []Mark {
	return c.lookup(key, stamp, text, admit).marks
}

// Invalidate drops the entry for key.
func (c *Cache[K, S]) Invalidate(key K) {
	if _, ok := c.slots.LoadAndDelete(key); ok {
		c.metrics.setEntries(int(c.n.Add(-1)))
	}
}

// Clear drops every entry.
func (c *Cache[K, S]) Clear() {
	c.slots.Range(func(key, _ any) bool {
		c.Invalidate(key.(K))
		return true
	})
}

// CacheStats is a point-in-time view of cache efficiency.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// HitRate is Hits / (Hits + Misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns the current hit, miss and entry counts.
func (c *Cache[K, S]) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: int(c.n.Load()),
	}
}

func (c *Cache[K, S]) slot(key K) *slot[S] {
	if v, ok := c.slots.Load(key); ok {
		return v.(*slot[S])
	}
	v, loaded := c.slots.LoadOrStore(key, new(slot[S]))
	if !loaded {
		c.metrics.setEntries(int(c.n.Add(1)))
	}
	return v.(*slot[S])
}

func (c *Cache[K, S]) lookup(key K, stamp S, text string, admit AdmitFunc) *entry[S] {
	s := c.slot(key)
	if e := s.cur.Load(); e != nil && e.stamp == stamp {
		c.hit()
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have scanned this revision while we waited.
	if e := s.cur.Load(); e != nil && e.stamp == stamp {
		c.hit()
		return e
	}
	c.misses.Add(1)
	c.metrics.cacheMiss()
	e := newEntry(stamp, Scan(text, admit))
	s.cur.Store(e)
	return e
}

func (c *Cache[K, S]) hit() {
	c.hits.Add(1)
	c.metrics.cacheHit()
}
