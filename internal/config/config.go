package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageDynamoDB = "dynamodb"
	StorageFeed     = "feed"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxRetries  int

	Port       string
	PathPrefix string

	StorageType     string
	DatabaseDriver  string
	DatabaseURL     string
	DynamoTable     string
	DynamoEndpoint  string
	StationFeedURL  string
	StationFeedPath string
	SeedPath        string

	DefaultLimit int
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

func WithPort(port string) Option {
	return func(c *Config) {
		c.Port = port
	}
}

func WithPathPrefix(prefix string) Option {
	return func(c *Config) {
		c.PathPrefix = prefix
	}
}

// WithStorageType selects where station snapshots are read from.
func WithStorageType(storageType string) Option {
	return func(c *Config) {
		c.StorageType = storageType
	}
}

func WithDatabase(driver, url string) Option {
	return func(c *Config) {
		c.DatabaseDriver = driver
		c.DatabaseURL = url
	}
}

func WithDynamoTable(table, endpoint string) Option {
	return func(c *Config) {
		c.DynamoTable = table
		c.DynamoEndpoint = endpoint
	}
}

func WithStationFeed(baseURL, path string) Option {
	return func(c *Config) {
		c.StationFeedURL = baseURL
		c.StationFeedPath = path
	}
}

func WithSeedPath(path string) Option {
	return func(c *Config) {
		c.SeedPath = path
	}
}

func WithDefaultLimit(limit int) Option {
	return func(c *Config) {
		if limit > 0 {
			c.DefaultLimit = limit
		}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:     "production",
		LogLevel:        zerolog.InfoLevel,
		HTTPTimeout:     10 * time.Second,
		MaxRetries:      3,
		Port:            "8080",
		StorageType:     StorageMemory,
		DatabaseDriver:  "pgx",
		DynamoTable:     "charging_stations",
		StationFeedPath: "/stations",
		SeedPath:        "data/stations.json",
		DefaultLimit:    5,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Validate checks that the selected storage backend has what it needs.
func (c *Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
		return nil
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s storage", c.StorageType)
		}
	case StorageDynamoDB:
		if c.DynamoTable == "" {
			return fmt.Errorf("DYNAMODB_STATIONS_TABLE is required for %s storage", c.StorageType)
		}
	case StorageFeed:
		if c.StationFeedURL == "" {
			return fmt.Errorf("STATION_FEED_URL is required for %s storage", c.StorageType)
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	return nil
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithMaxRetries(getEnvInt("HTTP_MAX_RETRIES", 3)),
		WithPort(getEnvOrDefault("PORT", "8080")),
		WithPathPrefix(os.Getenv("PATH_PREFIX")),
		WithStorageType(getEnvOrDefault("STORAGE_TYPE", StorageMemory)),
		WithDatabase(getEnvOrDefault("DB_DRIVER", "pgx"), os.Getenv("DATABASE_URL")),
		WithDynamoTable(getEnvOrDefault("DYNAMODB_STATIONS_TABLE", "charging_stations"), os.Getenv("DYNAMODB_ENDPOINT")),
		WithStationFeed(os.Getenv("STATION_FEED_URL"), getEnvOrDefault("STATION_FEED_PATH", "/stations")),
		WithSeedPath(getEnvOrDefault("SEED_PATH", "data/stations.json")),
		WithDefaultLimit(getEnvInt("DEFAULT_LIMIT", 5)),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
