package similarity

import (
	"container/list"
	"sync"
)

// DefaultCacheEntries bounds the vector cache of a long-running server.
const DefaultCacheEntries = 10000

// VectorCache is an in-memory embedding cache that evicts the least
// recently used entry once it holds maxEntries vectors.
type VectorCache struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List
	store      map[string]*list.Element
}

type cacheEntry struct {
	key    string
	vector []float32
}

// NewVectorCache creates a new vector cache. maxEntries <= 0 uses
// DefaultCacheEntries.
func NewVectorCache(maxEntries int) *VectorCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &VectorCache{
		maxEntries: maxEntries,
		order:      list.New(),
		store:      make(map[string]*list.Element),
	}
}

// Get retrieves a vector from cache
func (c *VectorCache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.store[key]
	if !found {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).vector, true
}

// Set stores a vector in cache
func (c *VectorCache) Set(key string, v []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.store[key]; found {
		el.Value.(*cacheEntry).vector = v
		c.order.MoveToFront(el)
		return
	}
	c.store[key] = c.order.PushFront(&cacheEntry{key: key, vector: v})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.store, oldest.Value.(*cacheEntry).key)
	}
}

// Clear removes all entries from cache
func (c *VectorCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.store = make(map[string]*list.Element)
}

// Size returns the number of cached entries
func (c *VectorCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.store)
}
