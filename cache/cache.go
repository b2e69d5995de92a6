package cache

import (
	"container/list"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/healthlang/ilera/schema"
)

// Cache stores finished query responses keyed by fingerprint. Eviction
// is strictly insertion-ordered: updating an existing key does not move
// it, so the oldest inserted entry is always evicted first.
type Cache interface {
	Get(key string) (schema.QueryResponse, bool)
	Set(key string, value schema.QueryResponse)
	Purge()
	Len() int
}

type entry struct {
	key     string
	value   schema.QueryResponse
	expires time.Time
	element *list.Element
}

type fifoCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[string]*entry
	order    *list.List
}

// Option configures a cache at construction.
type Option func(*fifoCache)

// WithClock injects the time source. Tests use it to drive expiry
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *fifoCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a FIFO cache with capacity and entry TTL.
func New(capacity int, ttl time.Duration, opts ...Option) Cache {
	if capacity <= 0 {
		capacity = 2000
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	c := &fifoCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*entry, capacity),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *fifoCache) Get(key string) (schema.QueryResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		if c.now().Before(ent.expires) {
			return ent.value, true
		}
		c.removeEntry(ent)
	}
	return schema.QueryResponse{}, false
}

func (c *fifoCache) Set(key string, value schema.QueryResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		// refresh in place; insertion position is preserved
		ent.value = value
		ent.expires = c.now().Add(c.ttl)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(key)
	c.items[key] = &entry{
		key:     key,
		value:   value,
		expires: c.now().Add(c.ttl),
		element: elem,
	}
}

func (c *fifoCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.order.Init()
}

func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *fifoCache) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	key := elem.Value.(string)
	if ent, ok := c.items[key]; ok {
		c.removeEntry(ent)
	}
}

func (c *fifoCache) removeEntry(ent *entry) {
	if ent.element != nil {
		c.order.Remove(ent.element)
	}
	delete(c.items, ent.key)
}

// Fingerprint derives the cache key for a request: sha1 hex over the
// normalized query text joined with the language pair and the
// output-affecting flags. Responses carry no user content, so keys are
// global.
func Fingerprint(req schema.QueryRequest) string {
	base := strings.Join([]string{
		NormalizeQuery(req.Text),
		strings.ToLower(req.SourceLang),
		strings.ToLower(req.TargetLang),
		strconv.FormatBool(req.Translate),
		strconv.FormatBool(req.SourcesEnabled()),
	}, "|")
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}

// NormalizeQuery lowercases, trims, and collapses interior whitespace
// runs to single spaces.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
