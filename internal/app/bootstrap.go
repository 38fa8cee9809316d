package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/cache"
	"github.com/bbernstein/evlocator/backend-go/internal/config"
	"github.com/bbernstein/evlocator/backend-go/internal/station"
	"github.com/bbernstein/evlocator/backend-go/internal/storage"
	"github.com/bbernstein/evlocator/backend-go/pkg/http/client"
)

// Service bundles the finder with whatever needs releasing on shutdown.
type Service struct {
	Finder      *station.Finder
	lookupCache *cache.StationLookupCache
	closers     []func() error
}

// Close flushes pending cache writes and releases backend connections.
func (s *Service) Close() error {
	if s.Finder != nil {
		s.Finder.Flush()
	}
	if s.lookupCache != nil {
		stats := s.lookupCache.Stats()
		log.Info().
			Uint64("hits", stats.Hits).
			Uint64("misses", stats.Misses).
			Int("entries", stats.Entries).
			Msg("Station lookup cache stats")
	}
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Hooks for tests.
var (
	newS3Client     = func(ctx context.Context) (cache.S3Client, error) { return cache.NewS3Client(ctx) }
	newDynamoClient = func(ctx context.Context, endpoint string) (storage.DynamoDBAPI, error) {
		return storage.NewDynamoClient(ctx, endpoint)
	}
)

// NewService builds the station store selected by cfg.StorageType and wraps it
// in a Finder with the caches enabled in cacheCfg.
func NewService(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cacheCfg == nil {
		cacheCfg = config.GetCacheConfig()
	}

	svc := &Service{}
	store, err := svc.newStore(ctx, cfg)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	opts := []station.FinderOption{station.WithDefaultLimit(cfg.DefaultLimit)}

	if cacheCfg.EnableLookupCache {
		lookupCache, err := cache.NewStationLookupCache(cacheCfg)
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
		svc.lookupCache = lookupCache
		opts = append(opts, station.WithLookupCache(lookupCache))
	}

	if cacheCfg.EnableS3Cache && cacheCfg.StationListS3Bucket != "" {
		s3Client, err := newS3Client(ctx)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("creating S3 client: %w", err)
		}
		opts = append(opts, station.WithS3Cache(
			cache.NewS3StationCache(s3Client, cacheCfg.StationListS3Bucket, cacheCfg.GetStationListS3TTL(),
				cache.WithSnapshotKey(cacheCfg.StationListS3Key)),
		))
		log.Info().Str("bucket", cacheCfg.StationListS3Bucket).Msg("S3 station cache enabled")
	}

	finder, err := station.NewFinder(store, cache.NewStationCache(cacheCfg), opts...)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	svc.Finder = finder

	log.Info().
		Str("storage", cfg.StorageType).
		Bool("lookup_cache", cacheCfg.EnableLookupCache).
		Int("default_limit", cfg.DefaultLimit).
		Msg("Station service initialized")

	return svc, nil
}

func (s *Service) newStore(ctx context.Context, cfg *config.Config) (storage.StationStore, error) {
	switch cfg.StorageType {
	case config.StoragePostgres:
		db, err := storage.OpenDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		return storage.NewSQLStationStore(db), nil

	case config.StorageDynamoDB:
		dynamoClient, err := newDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		return storage.NewDynamoStationStore(dynamoClient, cfg.DynamoTable), nil

	case config.StorageFeed:
		httpClient := client.New(client.Options{
			BaseURL:    cfg.StationFeedURL,
			Timeout:    cfg.HTTPTimeout,
			MaxRetries: cfg.MaxRetries,
		})
		return storage.NewFeedStationStore(httpClient, cfg.StationFeedPath), nil

	default:
		return newMemoryStore(cfg.SeedPath)
	}
}

// newMemoryStore seeds an in-memory store from path. A missing file yields an
// empty store so the service still starts.
func newMemoryStore(path string) (*storage.MemoryStationStore, error) {
	if path == "" {
		return storage.NewMemoryStationStore(nil), nil
	}
	stations, err := storage.LoadSeedFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("Seed file not found, starting with no stations")
		return storage.NewMemoryStationStore(nil), nil
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("count", len(stations)).Msg("Loaded seed stations")
	return storage.NewMemoryStationStore(stations), nil
}
