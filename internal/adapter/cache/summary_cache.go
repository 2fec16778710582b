package cache

import (
	"sync"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/observability"
	"github.com/couchcryptid/bike-rental-report/internal/report"
)

// Summarizer computes a summary for a filter specification.
type Summarizer interface {
	Summarize(spec report.FilterSpec) report.Summary
}

// CachedSummarizer memoizes summaries per filter spec in an LRU cache. The
// dataset behind the inner Summarizer is immutable, so entries never go stale.
type CachedSummarizer struct {
	inner   Summarizer
	cache   *lruCache[report.Summary]
	metrics *observability.Metrics
}

// NewCachedSummarizer creates a cache decorator around a Summarizer.
func NewCachedSummarizer(inner Summarizer, maxEntries int, metrics *observability.Metrics) *CachedSummarizer {
	return &CachedSummarizer{
		inner:   inner,
		cache:   newLRUCache[report.Summary](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSummarizer) Summarize(spec report.FilterSpec) report.Summary {
	key := spec.Key()
	if s, ok := c.cache.get(key); ok {
		c.metrics.SummaryCache.WithLabelValues("hit").Inc()
		return s
	}
	c.metrics.SummaryCache.WithLabelValues("miss").Inc()

	start := time.Now()
	s := c.inner.Summarize(spec)
	c.metrics.AggregationDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())

	c.cache.put(key, s)
	return s
}

// Len reports how many summaries are cached.
func (c *CachedSummarizer) Len() int {
	return c.cache.len()
}

// lruCache is a simple thread-safe LRU cache keyed by string.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
