package cache

import (
	"sync"
	"time"

	"github.com/bbernstein/evlocator/backend-go/internal/config"
	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

const defaultStationListTTL = 30 * time.Second

// StationCache holds the most recent station snapshot in process memory.
type StationCache struct {
	stations  []models.Station
	expiresAt time.Time
	ttl       time.Duration
	clock     clock
	mu        sync.RWMutex
}

// NewStationCache creates a snapshot cache; a nil config uses the default TTL.
func NewStationCache(cfg *config.CacheConfig) *StationCache {
	ttl := defaultStationListTTL
	if cfg != nil && cfg.StationListTTLSeconds > 0 {
		ttl = cfg.GetStationListTTL()
	}

	return &StationCache{
		stations: make([]models.Station, 0),
		ttl:      ttl,
		clock:    systemClock{},
	}
}

// GetStations returns the cached snapshot, or nil when it is missing or expired.
func (c *StationCache) GetStations() []models.Station {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiresAt.IsZero() || !c.clock.Now().Before(c.expiresAt) {
		return nil
	}
	return c.stations
}

// SetStations caches a snapshot read just now from the source of truth.
func (c *StationCache) SetStations(stations []models.Station) {
	c.SetStationsUntil(stations, time.Time{})
}

// SetStationsUntil caches a snapshot that must not be served after deadline.
// The entry lives for the cache TTL or until deadline, whichever is sooner; a
// zero deadline means no outer bound.
func (c *StationCache) SetStationsUntil(stations []models.Station, deadline time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if !deadline.IsZero() && deadline.Before(expiresAt) {
		expiresAt = deadline
	}
	c.stations = stations
	c.expiresAt = expiresAt
}
