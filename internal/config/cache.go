package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// In-process station list snapshot
	StationListTTLSeconds int

	// Station-by-id LRU
	StationLookupLRUSize    int
	StationLookupTTLSeconds int

	// S3 station list snapshot shared between instances
	StationListS3Bucket     string
	StationListS3Key        string
	StationListS3TTLSeconds int

	EnableLookupCache bool
	EnableS3Cache     bool
}

const (
	// Availability counts change constantly, so snapshots stay short-lived.
	defaultStationListTTLSeconds   = 30
	defaultStationLookupLRUSize    = 1000
	defaultStationLookupTTLSeconds = 30
	defaultStationListS3TTLSeconds = 300
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		StationListTTLSeconds:   getEnvInt("CACHE_STATION_LIST_TTL_SECONDS", defaultStationListTTLSeconds),
		StationLookupLRUSize:    getEnvInt("CACHE_STATION_LOOKUP_LRU_SIZE", defaultStationLookupLRUSize),
		StationLookupTTLSeconds: getEnvInt("CACHE_STATION_LOOKUP_TTL_SECONDS", defaultStationLookupTTLSeconds),
		StationListS3Bucket:     getEnvOrDefault("CACHE_STATION_LIST_BUCKET", ""),
		StationListS3Key:        getEnvOrDefault("CACHE_STATION_LIST_KEY", ""),
		StationListS3TTLSeconds: getEnvInt("CACHE_STATION_LIST_S3_TTL_SECONDS", defaultStationListS3TTLSeconds),
		EnableLookupCache:       getEnvBool("CACHE_ENABLE_LOOKUP", true),
		EnableS3Cache:           getEnvBool("CACHE_ENABLE_S3", false),
	}

	log.Debug().
		Int("StationListTTLSeconds", config.StationListTTLSeconds).
		Int("StationLookupLRUSize", config.StationLookupLRUSize).
		Int("StationLookupTTLSeconds", config.StationLookupTTLSeconds).
		Str("StationListS3Bucket", config.StationListS3Bucket).
		Str("StationListS3Key", config.StationListS3Key).
		Int("StationListS3TTLSeconds", config.StationListS3TTLSeconds).
		Bool("EnableLookupCache", config.EnableLookupCache).
		Bool("EnableS3Cache", config.EnableS3Cache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetStationListTTL() time.Duration {
	return time.Duration(c.StationListTTLSeconds) * time.Second
}

func (c *CacheConfig) GetStationLookupTTL() time.Duration {
	return time.Duration(c.StationLookupTTLSeconds) * time.Second
}

func (c *CacheConfig) GetStationListS3TTL() time.Duration {
	return time.Duration(c.StationListS3TTLSeconds) * time.Second
}
