package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultCapacity = 1000
	DefaultTTL      = time.Hour
)

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
}

// Cache is a fixed-capacity, string-keyed cache with a per-entry TTL and
// least-recently-used eviction on overflow. Expired entries are dropped
// lazily on read. Safe for concurrent use; a miss race may issue
// duplicate upstream calls, which is acceptable for the providers that
// use it.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // front = most recently used
	items    map[string]*list.Element

	now func() time.Time
}

func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[V])
	if c.now().After(ent.expires) {
		c.order.Remove(el)
		delete(c.items, key)
		return zero, false
	}
	c.order.MoveToFront(el)
	return ent.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.expires = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}
	el := c.order.PushFront(&entry[V]{
		key:     key,
		value:   value,
		expires: c.now().Add(c.ttl),
	})
	c.items[key] = el
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
