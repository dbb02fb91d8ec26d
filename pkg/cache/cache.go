package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultCapacity is the number of entries held before the oldest
	// insertion is evicted.
	DefaultCapacity = 100
)

var (
	ErrClosed = errors.New("cache is closed")
)

// Cache is a bounded key-value store with per-entry expiry. Once full, the
// least recently inserted entry is evicted to make room.
type Cache interface {
	// Put inserts or overwrites a value. An overwrite counts as a new insertion
	// for eviction order.
	Put(key, value string, ttl time.Duration) error

	// Get returns the value if present and unexpired. Expired entries are
	// removed.
	Get(key string) (string, bool, error)

	// Clear removes all entries.
	Clear() error

	// Len returns the number of entries, including expired ones not yet
	// removed.
	Len() int

	// Close releases the entries. Every later operation fails with ErrClosed.
	Close()
}

type cacheEntry struct {
	value  string
	expiry time.Time
}

type cache struct {
	log      *logrus.Entry
	capacity int
	now      func() time.Time

	mutex   sync.Mutex
	entries *linkedhashmap.Map // key -> *cacheEntry, in insertion order
	closed  bool
}

// NewCache returns a Cache holding up to capacity entries. A non-positive
// capacity uses DefaultCapacity.
func NewCache(capacity int) Cache {
	return newCache(capacity, time.Now)
}

func newCache(capacity int, now func() time.Time) *cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &cache{
		log:      logrus.StandardLogger().WithField("type", "cache"),
		capacity: capacity,
		now:      now,
		entries:  linkedhashmap.New(),
	}
}

func (c *cache) Put(key, value string, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrClosed
	}

	if _, found := c.entries.Get(key); found {
		c.entries.Remove(key)
	}

	for c.entries.Size() >= c.capacity {
		c.evictOldest()
	}

	c.entries.Put(key, &cacheEntry{
		value:  value,
		expiry: c.now().Add(ttl),
	})
	return nil
}

func (c *cache) Get(key string) (string, bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return "", false, ErrClosed
	}

	raw, found := c.entries.Get(key)
	if !found {
		return "", false, nil
	}

	entry := raw.(*cacheEntry)
	if !c.now().Before(entry.expiry) {
		c.entries.Remove(key)
		return "", false, nil
	}

	return entry.value, true, nil
}

func (c *cache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.entries.Clear()
	return nil
}

func (c *cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.entries.Size()
}

func (c *cache) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.closed = true
	c.entries.Clear()
}

// evictOldest removes the least recently inserted entry. The caller must hold
// the mutex.
func (c *cache) evictOldest() {
	it := c.entries.Iterator()
	if !it.First() {
		return
	}

	key := it.Key()
	c.entries.Remove(key)

	c.log.WithField("key", key).Debug("evicted oldest entry")
}
