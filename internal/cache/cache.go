// Package cache provides the bounded expiring result cache shared by all
// query pipelines. Entries carry a TTL and the store is capped: Set sweeps
// expired entries first and then evicts by least-recent use until the
// capacity holds. Expiry is authoritative — an expired entry is never
// returned, whether or not eviction ever reached it.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Cache is a TTL + LRU key/value store. All methods are safe for
// concurrent use; each call is a single short critical section with no I/O.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element

	// recency holds *entry values, most recently used at the front.
	recency *list.List

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a cache bounded to capacity entries. A capacity of 0 or less
// disables storage entirely: Set becomes a no-op after sweeping.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		recency:  list.New(),
		now:      time.Now,
	}
}

// Get returns the live value for key. An entry past its TTL counts as a
// miss and is removed on the spot.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*entry)
	if ent.expiresAt.Before(c.now()) {
		c.remove(el)
		return nil, false
	}
	c.recency.MoveToFront(el)
	return ent.value, true
}

// Set stores value under key for ttl, refreshes its recency, sweeps all
// expired entries, and then evicts least-recently-used entries until the
// size is back within capacity.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.value = value
		ent.expiresAt = now.Add(ttl)
		c.recency.MoveToFront(el)
	} else {
		el := c.recency.PushFront(&entry{key: key, value: value, expiresAt: now.Add(ttl)})
		c.items[key] = el
	}

	// Expired-first sweep.
	for el := c.recency.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*entry).expiresAt.Before(now) {
			c.remove(el)
		}
		el = prev
	}

	// Capacity eviction, oldest recency first.
	for len(c.items) > c.capacity {
		c.remove(c.recency.Back())
	}
}

// Len returns the current number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.recency.Init()
}

// remove unlinks el from both structures. Caller holds the lock.
func (c *Cache) remove(el *list.Element) {
	ent := el.Value.(*entry)
	delete(c.items, ent.key)
	c.recency.Remove(el)
}
