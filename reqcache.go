package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// Backend is the key/value capability the cache is persisted to.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, entry []byte, storedAt time.Time) error
}

type purger interface {
	DeleteBefore(cutoff time.Time) (int64, error)
}

type cacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// CacheStore keeps raw search responses keyed by (query, page). Entries
// older than ttl read as absent.
type CacheStore struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	log     *log.Logger
}

func NewCacheStore(backend Backend, ttl time.Duration) *CacheStore {
	return &CacheStore{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		log:     log.New(os.Stderr, "(cache) ", log.LstdFlags),
	}
}

func cacheKey(query string, page int) string {
	return fmt.Sprintf("unsplash_%s_%d", query, page)
}

// Get returns the payload stored for (query, page). A read or decode failure
// is returned as a *CacheIOError together with ok == false.
func (cs *CacheStore) Get(query string, page int) (json.RawMessage, bool, error) {
	key := cacheKey(query, page)
	data, ok, err := cs.backend.Get(key)
	if err != nil {
		return nil, false, &CacheIOError{Op: "read", Key: key, Err: err}
	}
	if !ok {
		return nil, false, nil
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, &CacheIOError{Op: "decode", Key: key, Err: err}
	}
	age := cs.now().Sub(time.UnixMilli(entry.Timestamp))
	if age >= cs.ttl {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (cs *CacheStore) Put(query string, page int, payload json.RawMessage) error {
	key := cacheKey(query, page)
	now := cs.now()
	data, err := json.Marshal(cacheEntry{Data: payload, Timestamp: now.UnixMilli()})
	if err != nil {
		return &CacheIOError{Op: "encode", Key: key, Err: err}
	}
	if err := cs.backend.Put(key, data, now); err != nil {
		return &CacheIOError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// PurgeExpired drops expired entries every interval until ctx is done.
// It returns immediately when the backend cannot delete by age.
func (cs *CacheStore) PurgeExpired(ctx context.Context, interval time.Duration) {
	p, ok := cs.backend.(purger)
	if !ok {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := p.DeleteBefore(cs.now().Add(-cs.ttl)); err != nil {
			cs.log.Println("Purge failed:", err.Error())
		} else if n > 0 {
			cs.log.Println("Purged", n, "expired entries")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Fetcher performs an uncached search.
type Fetcher interface {
	FetchPhotos(ctx context.Context, query string, page int) (*SearchResult, error)
}

// CachedSearcher lets the CacheStore short-circuit the network. With
// Interactive unset it always goes live.
type CachedSearcher struct {
	api         Fetcher
	cache       *CacheStore
	Interactive bool
	log         *log.Logger
}

func NewCachedSearcher(api Fetcher, cache *CacheStore, interactive bool) *CachedSearcher {
	return &CachedSearcher{
		api:         api,
		cache:       cache,
		Interactive: interactive,
		log:         log.New(os.Stderr, "(cache) ", log.LstdFlags),
	}
}

func (rc *CachedSearcher) SearchPhotos(ctx context.Context, query string, page int) (*SearchResult, error) {
	if !rc.Interactive || rc.cache == nil {
		return rc.api.FetchPhotos(ctx, query, page)
	}

	data, ok, err := rc.cache.Get(query, page)
	if err != nil {
		rc.log.Println("Cache error:", err.Error())
	}
	if ok {
		res, err := decodeSearchResult(data)
		if err == nil {
			debugf(rc.log, "HIT %s", cacheKey(query, page))
			return res, nil
		}
		rc.log.Println("Problems decoding cached result", err.Error())
	}

	res, err := rc.api.FetchPhotos(ctx, query, page)
	if err != nil {
		return nil, err
	}
	debugf(rc.log, "MISS %s", cacheKey(query, page))
	if err := rc.cache.Put(query, page, res.Raw); err != nil {
		rc.log.Println("Cache error:", err.Error())
	}
	return res, nil
}
