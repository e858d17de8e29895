// Package cache holds the last-known list of one resource type fetched from
// the backend.
//
// A ResourceCache is mutated only through Refresh, Upsert and Remove. Readers
// get copies, so a slice returned by All or Snapshot never changes under them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"sync"
	"time"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/metrics"
)

// ErrIncompletePayload is returned by UpsertJSON when a pushed payload is not
// a complete entity. Callers fall back to Refresh.
var ErrIncompletePayload = errors.New("incomplete entity payload")

// Entity is a cacheable resource.
type Entity interface {
	Key() string
	Complete() bool
}

// Getter fetches a JSON document. transport.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// Snapshot is an immutable view of the cache at one version.
type Snapshot[T Entity] struct {
	Items       []T
	Version     uint64
	RefreshedAt time.Time
}

// ResourceCache is the cache for one entity type.
type ResourceCache[T Entity] struct {
	name   string
	path   string
	query  url.Values
	client Getter
	now    func() time.Time

	mu          sync.RWMutex
	items       []T
	version     uint64
	refreshedAt time.Time
}

// Option configures a ResourceCache.
type Option func(*options)

type options struct {
	query url.Values
	now   func() time.Time
}

// WithQuery sets the default query sent on Refresh.
func WithQuery(q url.Values) Option {
	return func(o *options) { o.query = q }
}

// WithClock overrides the clock used for RefreshedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates an empty cache named name that refreshes from path.
func New[T Entity](name, path string, client Getter, opts ...Option) *ResourceCache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &ResourceCache[T]{
		name:   name,
		path:   path,
		query:  o.query,
		client: client,
		now:    o.now,
	}
}

// Name returns the cache name used in logs and metrics.
func (c *ResourceCache[T]) Name() string { return c.name }

// Refresh fetches the full list with the default query and replaces the cache.
func (c *ResourceCache[T]) Refresh(ctx context.Context) error {
	return c.RefreshWith(ctx, c.query)
}

// RefreshWith fetches the full list with query and replaces the cache.
//
// The result is applied in completion order. If another change landed while
// the request was in flight, the result still replaces it and the overwrite is
// logged and counted. On failure the cache keeps its previous contents.
func (c *ResourceCache[T]) RefreshWith(ctx context.Context, query url.Values) error {
	c.mu.RLock()
	startVersion := c.version
	c.mu.RUnlock()

	path := c.path
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	raw, err := c.client.Get(ctx, path)
	if err != nil {
		metrics.CacheRefreshes.WithLabelValues(c.name, "error").Inc()
		slog.Warn("Cache refresh failed", "cache", c.name, "path", path, "error", err)
		return fmt.Errorf("failed to refresh %s: %w", c.name, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		metrics.CacheRefreshes.WithLabelValues(c.name, "error").Inc()
		slog.Warn("Cache refresh returned invalid payload", "cache", c.name, "error", err)
		return fmt.Errorf("failed to decode %s: %w", c.name, err)
	}
	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != startVersion {
		metrics.CacheStaleOverwrites.WithLabelValues(c.name).Inc()
		slog.Warn("Cache refresh overwrote newer state",
			"cache", c.name,
			"started_at_version", startVersion,
			"current_version", c.version,
		)
	}
	if !reflect.DeepEqual(c.items, items) {
		c.items = items
		c.version++
	}
	c.refreshedAt = c.now()
	metrics.CacheRefreshes.WithLabelValues(c.name, "ok").Inc()
	slog.Debug("Cache refreshed", "cache", c.name, "count", len(items), "version", c.version)
	return nil
}

// Upsert replaces the entity with the same key or appends it.
func (c *ResourceCache[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, 0, len(c.items)+1)
	replaced := false
	for _, existing := range c.items {
		if existing.Key() == item.Key() {
			if !replaced {
				next = append(next, item)
				replaced = true
			}
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, item)
	}
	c.items = next
	c.version++
}

// UpsertJSON decodes a pushed payload and upserts it. It returns
// ErrIncompletePayload, leaving the cache untouched, when the payload does not
// decode into a complete entity.
func (c *ResourceCache[T]) UpsertJSON(raw json.RawMessage) error {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompletePayload, err)
	}
	if !item.Complete() {
		return ErrIncompletePayload
	}
	c.Upsert(item)
	return nil
}

// Remove deletes the entity with key id. It reports whether one was present.
func (c *ResourceCache[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, 0, len(c.items))
	for _, existing := range c.items {
		if existing.Key() != id {
			next = append(next, existing)
		}
	}
	if len(next) == len(c.items) {
		return false
	}
	c.items = next
	c.version++
	return true
}

// All returns a copy of the current items.
func (c *ResourceCache[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyItems()
}

// Get returns the entity with key id.
func (c *ResourceCache[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of cached items.
func (c *ResourceCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Snapshot returns the items together with their version.
func (c *ResourceCache[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot[T]{
		Items:       c.copyItems(),
		Version:     c.version,
		RefreshedAt: c.refreshedAt,
	}
}

// copyItems returns a non-nil copy of the items. Callers hold c.mu.
func (c *ResourceCache[T]) copyItems() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}
