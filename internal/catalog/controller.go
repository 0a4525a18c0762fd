// Package catalog implements the coherence protocol around each product
// operation: when to read through the cache, when to invalidate or refresh
// entries, and when to publish a lifecycle event.
package catalog

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/product-catalog-service/internal/bus"
	"github.com/fairyhunter13/product-catalog-service/internal/cache"
	"github.com/fairyhunter13/product-catalog-service/internal/event"
	"github.com/fairyhunter13/product-catalog-service/internal/model"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/store"
)

// Controller mediates every product operation across the store, the cache,
// and the bus. The store mutation is the commit point: cache and bus effects
// happen only after it succeeds, and their failures never fail the request.
type Controller struct {
	store store.Store
	cache cache.Cache
	bus   bus.Publisher
	enc   event.Encoder
	ttl   time.Duration

	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	eventsPublished atomic.Uint64
	eventsDropped   atomic.Uint64
}

// New wires a Controller. ttl bounds cache entry staleness; zero or negative
// falls back to cache.DefaultTTL.
func New(st store.Store, c cache.Cache, pub bus.Publisher, ttl time.Duration) *Controller {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Controller{store: st, cache: c, bus: pub, ttl: ttl}
}

// List returns the catalog, serving the allProducts snapshot when present and
// reading through to the store otherwise.
func (c *Controller) List(ctx context.Context) ([]model.Product, error) {
	if b, ok := c.cacheGet(ctx, cache.AllProducts); ok {
		var list []model.Product
		if err := json.Unmarshal(b, &list); err == nil {
			return list, nil
		}
		obs.Logger.Warn("cache_entry_corrupt", "key", cache.AllProducts)
	}
	list, err := c.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Product{}
	}
	c.cachePut(ctx, cache.AllProducts, list)
	return list, nil
}

// Get returns one product, reading through the per-id entry. A store miss is
// surfaced as model.ErrNotFound and never cached.
func (c *Controller) Get(ctx context.Context, id int64) (model.Product, error) {
	key := cache.ProductKey(id)
	if b, ok := c.cacheGet(ctx, key); ok {
		var p model.Product
		if err := json.Unmarshal(b, &p); err == nil {
			return p, nil
		}
		obs.Logger.Warn("cache_entry_corrupt", "key", key)
	}
	p, err := c.store.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	c.cachePut(ctx, key, p)
	return p, nil
}

// Create inserts the draft, evicts the list snapshot, and publishes
// product.created. The per-id entry is left unpopulated; the next Get warms
// it, which avoids a write-through race against a concurrent reader.
func (c *Controller) Create(ctx context.Context, draft model.Product) (model.Product, error) {
	p, err := c.store.Insert(ctx, draft)
	if err != nil {
		return model.Product{}, err
	}
	c.cacheEvict(ctx, cache.AllProducts)
	c.publish(ctx, event.RoutingCreated, func() ([]byte, error) { return c.enc.Product(p) })
	return p, nil
}

// Update applies the patch to the stored record and persists it, then evicts
// the list snapshot before overwriting the per-id entry, and publishes
// product.updated. The eviction-before-refresh order is fixed: a concurrent
// List miss must not repopulate the snapshot while a stale id entry is still
// the one a later read would pair it with.
func (c *Controller) Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	p, err := c.store.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	patch.Apply(&p)
	updated, err := c.store.Update(ctx, p)
	if err != nil {
		return model.Product{}, err
	}
	c.cacheEvict(ctx, cache.AllProducts)
	c.cachePut(ctx, cache.ProductKey(id), updated)
	c.publish(ctx, event.RoutingUpdated, func() ([]byte, error) { return c.enc.Product(updated) })
	return updated, nil
}

// Delete removes the product, evicts both its entry and the list snapshot,
// and publishes product.deleted with the `{"Id": id}` payload.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if _, err := c.store.FindByID(ctx, id); err != nil {
		return err
	}
	if err := c.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.cacheEvict(ctx, cache.ProductKey(id))
	c.cacheEvict(ctx, cache.AllProducts)
	c.publish(ctx, event.RoutingDeleted, func() ([]byte, error) { return c.enc.Deleted(id) })
	return nil
}

// Metrics returns the controller counters for the debug endpoint.
func (c *Controller) Metrics() (cacheHits, cacheMisses, eventsPublished, eventsDropped uint64) {
	return c.cacheHits.Load(), c.cacheMisses.Load(), c.eventsPublished.Load(), c.eventsDropped.Load()
}

// cacheGet treats cache errors as misses so a degraded cache never fails a
// read.
func (c *Controller) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	b, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		obs.Logger.Warn("cache_get_failed", "key", key, "error", err)
		c.cacheMisses.Add(1)
		return nil, false
	}
	if !ok {
		c.cacheMisses.Add(1)
		return nil, false
	}
	c.cacheHits.Add(1)
	return b, true
}

func (c *Controller) cachePut(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		obs.Logger.Warn("cache_marshal_failed", "key", key, "error", err)
		return
	}
	if err := c.cache.Put(ctx, key, b, c.ttl); err != nil {
		obs.Logger.Warn("cache_put_failed", "key", key, "error", err)
	}
}

func (c *Controller) cacheEvict(ctx context.Context, key string) {
	if err := c.cache.Evict(ctx, key); err != nil {
		obs.Logger.Warn("cache_evict_failed", "key", key, "error", err)
	}
}

// publish encodes and sends one event. Encoding and bus failures are logged
// and swallowed; the store commit already happened and the request succeeds.
func (c *Controller) publish(ctx context.Context, routingKey string, encode func() ([]byte, error)) {
	body, err := encode()
	if err != nil {
		obs.Logger.Error("event_encode_failed", "routing_key", routingKey, "error", err)
		c.eventsDropped.Add(1)
		return
	}
	if err := c.bus.Publish(ctx, event.Exchange, routingKey, body); err != nil {
		obs.Logger.Error("event_publish_failed", "routing_key", routingKey, "error", err)
		c.eventsDropped.Add(1)
		return
	}
	c.eventsPublished.Add(1)
	obs.Logger.Info("event_published", "exchange", event.Exchange, "routing_key", routingKey, "body", string(body))
}
