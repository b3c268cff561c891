package main

import (
	"time"

	"github.com/apibillme/cache"
)

// MemoryBackend keeps cache entries in a bounded in-process LRU.
// Nothing survives a restart.
type MemoryBackend struct {
	lru cache.Cache
}

func NewMemoryBackend(size int, ttl time.Duration) *MemoryBackend {
	if size <= 0 {
		size = 256
	}
	return &MemoryBackend{lru: cache.New(size, cache.WithTTL(ttl))}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

func (m *MemoryBackend) Put(key string, entry []byte, _ time.Time) error {
	m.lru.Set(key, append([]byte(nil), entry...))
	return nil
}
