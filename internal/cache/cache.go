package cache

import (
	"sync"
	"time"
)

// Item is a cached value with its expiry
type Item struct {
	Value     interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache
type Cache struct {
	items map[string]Item
	mu    sync.RWMutex
	ttl   time.Duration
}

// New creates a cache with the specified default TTL
func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]Item),
		ttl:   ttl,
	}

	go c.cleanup()

	return c
}

// Set stores a value with the default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Get retrieves a value, reporting whether it exists and is fresh
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found || time.Now().After(item.ExpiresAt) {
		return nil, false
	}

	return item.Value, true
}

// Delete removes a value
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]Item)
}

// cleanup evicts expired items periodically
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, item := range c.items {
			if now.After(item.ExpiresAt) {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// Status cache keys
const (
	KeyStatus = "agent:status"
	KeyHost   = "agent:host"
)

// StatusCache holds recently collected host snapshots for the agent's
// status endpoints, so polling clients don't re-sample the host on
// every request.
type StatusCache struct {
	*Cache
}

// NewStatusCache creates a status cache with a short TTL
func NewStatusCache() *StatusCache {
	return &StatusCache{
		Cache: New(2 * time.Second),
	}
}
