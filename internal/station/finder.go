package station

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/cache"
	"github.com/bbernstein/evlocator/backend-go/internal/models"
	"github.com/bbernstein/evlocator/backend-go/internal/storage"
)

// Finder answers station queries from a StationStore, keeping the snapshot
// in memory (and optionally S3) between requests.
type Finder struct {
	store        storage.StationStore
	memCache     *cache.StationCache
	s3Cache      cache.SnapshotStore
	lookupCache  *cache.StationLookupCache
	defaultLimit int
	pendingSaves sync.WaitGroup
}

var _ models.StationFinder = (*Finder)(nil)

type FinderOption func(*Finder)

// WithS3Cache adds a shared snapshot cache consulted after the in-memory one.
func WithS3Cache(s3Cache cache.SnapshotStore) FinderOption {
	return func(f *Finder) {
		f.s3Cache = s3Cache
	}
}

// WithLookupCache caches FindStation results by id.
func WithLookupCache(lookupCache *cache.StationLookupCache) FinderOption {
	return func(f *Finder) {
		f.lookupCache = lookupCache
	}
}

// WithDefaultLimit sets the result size used when a query passes limit <= 0.
func WithDefaultLimit(limit int) FinderOption {
	return func(f *Finder) {
		if limit > 0 {
			f.defaultLimit = limit
		}
	}
}

func NewFinder(store storage.StationStore, memCache *cache.StationCache, opts ...FinderOption) (*Finder, error) {
	if store == nil {
		return nil, fmt.Errorf("station store is required")
	}
	if memCache == nil {
		memCache = cache.NewStationCache(nil) // Use default config
	}

	f := &Finder{
		store:        store,
		memCache:     memCache,
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// FindNearestStations validates the query, loads the current snapshot and ranks it.
// Invalid queries fail with an *InvalidArgumentError before the store is touched.
func (f *Finder) FindNearestStations(ctx context.Context, query models.Query, limit int) ([]models.RankedStation, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = f.defaultLimit
	}

	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	ranked, err := FindNearest(query, stations, limit)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Float64("lat", query.Point.Latitude).
		Float64("lon", query.Point.Longitude).
		Float64("radius_km", query.RadiusKm).
		Int("candidates", len(stations)).
		Int("results", len(ranked)).
		Msg("Ranked nearby stations")
	return ranked, nil
}

func (f *Finder) FindStation(ctx context.Context, stationID int64) (*models.Station, error) {
	if f.lookupCache != nil {
		if station, ok := f.lookupCache.Get(stationID); ok {
			return station, nil
		}
	}

	station, err := f.store.GetStation(ctx, stationID)
	if err != nil {
		if errors.Is(err, storage.ErrStationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting station %d: %w", stationID, err)
	}

	if f.lookupCache != nil {
		f.lookupCache.Add(*station)
	}
	return station, nil
}

func (f *Finder) ListStations(ctx context.Context) ([]models.Station, error) {
	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}
	result := make([]models.Station, len(stations))
	copy(result, stations)
	return result, nil
}

// Flush waits for background snapshot uploads to finish.
func (f *Finder) Flush() {
	f.pendingSaves.Wait()
}

func (f *Finder) getStationList(ctx context.Context) ([]models.Station, error) {
	if stations := f.memCache.GetStations(); stations != nil {
		log.Debug().Msg("Memory cache HIT for station list")
		return stations, nil
	}

	if f.s3Cache != nil {
		snap, err := f.s3Cache.Load(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error loading station snapshot from S3")
		} else if snap != nil {
			log.Debug().Time("taken_at", snap.TakenAt).Msg("S3 cache HIT for station list")
			// Never serve the copy past the snapshot's own expiry.
			f.memCache.SetStationsUntil(snap.Stations, snap.ExpiresAt)
			return snap.Stations, nil
		}
	}

	log.Debug().Msg("Cache MISS for station list, reading from store")

	stations, err := f.store.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	if f.s3Cache != nil {
		f.pendingSaves.Add(1)
		go func() {
			defer f.pendingSaves.Done()
			if err := f.s3Cache.Save(context.Background(), stations); err != nil {
				log.Error().Err(err).Msg("Failed to save stations to S3 cache")
			}
		}()
	}

	f.memCache.SetStations(stations)
	return stations, nil
}
