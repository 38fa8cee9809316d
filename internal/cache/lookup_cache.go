package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/bbernstein/evlocator/backend-go/internal/config"
	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

type stationLookupEntry struct {
	station   models.Station
	expiresAt time.Time
}

// StationLookupCache is a bounded, TTL-limited cache of stations keyed by id.
type StationLookupCache struct {
	lru    *lru.Cache[int64, *stationLookupEntry]
	ttl    time.Duration
	clock  clock
	mu     sync.Mutex
	hits   uint64
	misses uint64
}

func NewStationLookupCache(cfg *config.CacheConfig) (*StationLookupCache, error) {
	lruCache, err := lru.New[int64, *stationLookupEntry](cfg.StationLookupLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &StationLookupCache{
		lru:   lruCache,
		ttl:   cfg.GetStationLookupTTL(),
		clock: systemClock{},
	}, nil
}

// Get returns a copy of the cached station.
func (c *StationLookupCache) Get(id int64) (*models.Station, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(id)
	if !ok {
		c.misses++
		return nil, false
	}
	if c.clock.Now().After(entry.expiresAt) {
		c.lru.Remove(id)
		c.misses++
		return nil, false
	}

	c.hits++
	station := entry.station
	return &station, true
}

func (c *StationLookupCache) Add(station models.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(station.ID, &stationLookupEntry{
		station:   station,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
}

// LookupStats reports cache effectiveness.
type LookupStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

func (c *StationLookupCache) Stats() LookupStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return LookupStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: c.lru.Len(),
	}
}
