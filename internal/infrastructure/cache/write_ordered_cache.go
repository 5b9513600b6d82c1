package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// EvictFunc is called with the city dropped to make room for a new one.
type EvictFunc func(city string)

// WriteOrderedCache is a bounded city cache that evicts the least recently
// written entry. Reads never change recency; only Put does.
type WriteOrderedCache struct {
	mu       sync.Mutex
	capacity int
	entries  *simplelru.LRU[string, weather.CacheEntry]
	onEvict  EvictFunc
}

// NewWriteOrderedCache creates a cache holding at most capacity cities.
func NewWriteOrderedCache(capacity int, onEvict EvictFunc) (*WriteOrderedCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	// simplelru's own callback also fires on Purge, so evictions are reported by Put instead.
	entries, err := simplelru.NewLRU[string, weather.CacheEntry](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &WriteOrderedCache{capacity: capacity, entries: entries, onEvict: onEvict}, nil
}

// Get implements ports.WeatherCache.Get.
func (c *WriteOrderedCache) Get(city string) (weather.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Peek(city)
}

// Put implements ports.WeatherCache.Put.
func (c *WriteOrderedCache) Put(city string, doc *weather.Document, now time.Time) {
	c.mu.Lock()
	var evicted string
	if !c.entries.Contains(city) && c.entries.Len() >= c.capacity {
		evicted, _, _ = c.entries.RemoveOldest()
	}
	// Add moves an existing key to the newest position.
	c.entries.Add(city, weather.CacheEntry{Document: doc, FetchedAt: now})
	c.mu.Unlock()

	if evicted != "" && c.onEvict != nil {
		c.onEvict(evicted)
	}
}

// Keys implements ports.WeatherCache.Keys.
func (c *WriteOrderedCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Keys()
}

func (c *WriteOrderedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *WriteOrderedCache) Capacity() int {
	return c.capacity
}

// Clear implements ports.WeatherCache.Clear.
func (c *WriteOrderedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Ensure WriteOrderedCache implements ports.WeatherCache at compile time.
var _ ports.WeatherCache = (*WriteOrderedCache)(nil)
