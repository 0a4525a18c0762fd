// Package cache is the read accelerator in front of the store. Entries live
// under the products namespace and expire after a per-entry time-to-live.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Namespace prefixes every key this service owns.
const Namespace = "products"

// DefaultTTL bounds how stale a cache entry can get.
const DefaultTTL = 5 * time.Minute

// AllProducts is the key holding the serialized full catalog snapshot.
var AllProducts = Key("allProducts")

// Key builds a namespaced cache key.
func Key(suffix string) string { return Namespace + "::" + suffix }

// ProductKey builds the key for a single product entry.
func ProductKey(id int64) string { return Key(strconv.FormatInt(id, 10)) }

// Cache is an ephemeral string-keyed byte store. Get reports a miss with
// ok=false; expired entries count as misses. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Evict(ctx context.Context, key string) error
}
