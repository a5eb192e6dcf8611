package resolver

import (
	"context"
	"sync"
)

// Kind tags an entry as holding a concrete value or a lazily produced
// one. The tag is explicit: a function value is never treated as a
// producer unless registered through Lazy.
type Kind uint8

const (
	// KindStatic entries carry their value from registration.
	KindStatic Kind = iota
	// KindLazy entries produce their value on first access.
	KindLazy
)

// Producer yields a value to be cached. It runs in the goroutine of the
// first caller that needs the value; concurrent callers for the same
// key await the same invocation.
type Producer func(ctx context.Context) (any, error)

// Adapter transforms a freshly produced value exactly once before it is
// cached. It is reapplied on every reload.
type Adapter func(value any) any

// PurgeFunc decides, from the currently cached value, whether it must
// be reloaded before being returned again. It is called with the cache
// lock held and must not block.
type PurgeFunc func(value any) bool

// Entry describes a cache registration.
type Entry struct {
	Key      string
	Kind     Kind
	Value    any
	Producer Producer
	Adapter  Adapter
	Purge    PurgeFunc
}

// EntryOption configures an Entry.
type EntryOption func(*Entry)

// WithAdapter attaches a post-production transform to the entry.
func WithAdapter(a Adapter) EntryOption {
	return func(e *Entry) { e.Adapter = a }
}

// WithPurge attaches a reload predicate to the entry.
func WithPurge(p PurgeFunc) EntryOption {
	return func(e *Entry) { e.Purge = p }
}

// Static creates an entry resolved to a concrete value at registration.
func Static(key string, value any, opts ...EntryOption) Entry {
	e := Entry{Key: key, Kind: KindStatic, Value: value}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Lazy creates an entry whose value is produced on first access.
func Lazy(key string, producer Producer, opts ...EntryOption) Entry {
	e := Entry{Key: key, Kind: KindLazy, Producer: producer}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// entry is the internal per-key state.
type entry struct {
	kind     Kind
	value    any
	resolved bool
	producer Producer
	adapter  Adapter
	purge    PurgeFunc
}

// load tracks one in-flight producer invocation. Waiters block on done
// and read value/err afterwards.
type load struct {
	done  chan struct{}
	value any
	err   error
}

// Cache is a keyed lazy-loading cache with at-most-one-concurrent-load
// per key. The pending map is the sole synchronization point between
// concurrent accessors of the same key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	pending map[string]*load
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		pending: make(map[string]*load),
	}
}

// Add registers an entry, replacing any previous registration for the
// same key. A replaced key's in-flight load is abandoned: its result is
// delivered to waiters but never cached.
func (c *Cache) Add(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[e.Key] = &entry{
		kind:     e.Kind,
		value:    e.Value,
		resolved: e.Kind == KindStatic,
		producer: e.Producer,
		adapter:  e.Adapter,
		purge:    e.Purge,
	}
	delete(c.pending, e.Key)
}

// Get returns the cached value for key, producing it first when the
// entry is lazy and unresolved, or when its purge predicate rejects the
// current value. Unknown keys return nil without error. A lazy entry
// with no producer and no resolved value returns nil indefinitely;
// this mirrors the behavior the cache was modeled on and is not an
// error.
func (c *Cache) Get(ctx context.Context, key string) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil, nil
	}

	if e.resolved && (e.purge == nil || !e.purge(e.value)) {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}

	if e.producer == nil {
		c.mu.Unlock()
		return nil, nil
	}

	return c.loadLocked(ctx, key, e)
}

// Reload forces a fresh production for key, bypassing the purge check.
// Concurrent callers observe the same in-flight load. Entries without a
// producer return their current value unchanged.
func (c *Cache) Reload(ctx context.Context, key string) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil, nil
	}

	if e.producer == nil {
		var v any
		if e.resolved {
			v = e.value
		}
		c.mu.Unlock()
		return v, nil
	}

	return c.loadLocked(ctx, key, e)
}

// loadLocked joins the in-flight load for key or starts one. Called
// with c.mu held; returns with it released.
func (c *Cache) loadLocked(ctx context.Context, key string, e *entry) (any, error) {
	if ld, ok := c.pending[key]; ok {
		c.mu.Unlock()
		select {
		case <-ld.done:
			return ld.value, ld.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ld := &load{done: make(chan struct{})}
	c.pending[key] = ld
	c.mu.Unlock()

	v, err := e.producer(ctx)
	if err == nil && e.adapter != nil {
		v = e.adapter(v)
	}
	ld.value, ld.err = v, err
	close(ld.done)

	c.mu.Lock()
	if c.pending[key] == ld {
		delete(c.pending, key)
		// Cache only if the registration was not replaced or deleted
		// while the producer ran; waiters still receive the result.
		if cur, ok := c.entries[key]; ok && cur == e && err == nil {
			e.value = v
			e.resolved = true
		}
	}
	c.mu.Unlock()

	return v, err
}

// Delete removes the entry for key: cached value, producer
// registration, and pending-load bookkeeping. An in-flight load is not
// cancelled, only its caching is abandoned.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	delete(c.pending, key)
}

// Clear removes every entry and all pending-load bookkeeping.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.pending = make(map[string]*load)
}

// Keys returns the currently registered keys, in no particular order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
