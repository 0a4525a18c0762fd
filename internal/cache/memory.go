package cache

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

const (
	memoryCapacity           = 10_000
	memoryShards             = 64
	memoryEvictionPercentage = 10
)

// Memory is a sturdyc-backed in-process Cache. It serves local runs without a
// Redis and every test. Entries expire after the TTL the cache was built
// with; the per-call ttl argument is ignored because sturdyc applies a
// client-level TTL.
type Memory struct {
	client *sturdyc.Client[[]byte]
}

// NewMemory builds an in-process cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		client: sturdyc.New[[]byte](memoryCapacity, memoryShards, ttl, memoryEvictionPercentage),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.client.Set(key, value)
	return nil
}

func (m *Memory) Evict(_ context.Context, key string) error {
	m.client.Delete(key)
	return nil
}
