package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

const (
	defaultSnapshotKey    = "stations/snapshot.json"
	snapshotFormatVersion = 1
)

// S3Client is the subset of the S3 API the snapshot cache uses.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot is a station list together with when it was read from the store
// and when it stops being servable.
type Snapshot struct {
	Stations  []models.Station
	TakenAt   time.Time
	ExpiresAt time.Time
}

// SnapshotStore shares station snapshots between instances.
type SnapshotStore interface {
	// Load returns nil without error when no fresh snapshot exists.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, stations []models.Station) error
}

// snapshotObject is the JSON layout of the S3 object. Expiry is not stored:
// readers apply their own TTL to TakenAt, so lowering the TTL takes effect
// without rewriting the object.
type snapshotObject struct {
	Version      int              `json:"version"`
	TakenAt      time.Time        `json:"takenAt"`
	StationCount int              `json:"stationCount"`
	Stations     []models.Station `json:"stations"`
}

// S3StationCache keeps one station snapshot object in a bucket.
type S3StationCache struct {
	client S3Client
	bucket string
	key    string
	ttl    time.Duration
	clock  clock
}

var _ SnapshotStore = (*S3StationCache)(nil)

type S3CacheOption func(*S3StationCache)

// WithSnapshotKey overrides the object key, e.g. to separate environments in one bucket.
func WithSnapshotKey(key string) S3CacheOption {
	return func(c *S3StationCache) {
		if key != "" {
			c.key = key
		}
	}
}

func NewS3StationCache(client S3Client, bucket string, ttl time.Duration, opts ...S3CacheOption) *S3StationCache {
	c := &S3StationCache{
		client: client,
		bucket: bucket,
		key:    defaultSnapshotKey,
		ttl:    ttl,
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewS3Client loads the default AWS configuration and returns an S3 client.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func (c *S3StationCache) Load(ctx context.Context) (*Snapshot, error) {
	if c.bucket == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			log.Debug().Str("key", c.key).Msg("No station snapshot in S3")
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot s3://%s/%s: %w", c.bucket, c.key, err)
	}
	defer func() {
		if err := out.Body.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing S3 object body")
		}
	}()

	var obj snapshotObject
	if err := json.NewDecoder(out.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if obj.Version != snapshotFormatVersion {
		log.Warn().Int("version", obj.Version).Msg("Ignoring station snapshot with unknown format")
		return nil, nil
	}
	if obj.StationCount != len(obj.Stations) {
		return nil, fmt.Errorf("snapshot truncated: header says %d stations, body has %d",
			obj.StationCount, len(obj.Stations))
	}

	expiresAt := obj.TakenAt.Add(c.ttl)
	if !c.clock.Now().Before(expiresAt) {
		log.Debug().Time("taken_at", obj.TakenAt).Msg("Station snapshot in S3 is stale")
		return nil, nil
	}

	return &Snapshot{
		Stations:  obj.Stations,
		TakenAt:   obj.TakenAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *S3StationCache) Save(ctx context.Context, stations []models.Station) error {
	if c.bucket == "" {
		return fmt.Errorf("empty bucket name")
	}
	if stations == nil {
		stations = []models.Station{}
	}

	body, err := json.Marshal(snapshotObject{
		Version:      snapshotFormatVersion,
		TakenAt:      c.clock.Now().UTC(),
		StationCount: len(stations),
		Stations:     stations,
	})
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(c.bucket),
		Key:          aws.String(c.key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String(fmt.Sprintf("max-age=%d", int(c.ttl.Seconds()))),
	})
	if err != nil {
		return fmt.Errorf("writing snapshot s3://%s/%s: %w", c.bucket, c.key, err)
	}

	log.Debug().Str("key", c.key).Int("station_count", len(stations)).Msg("Saved station snapshot to S3")
	return nil
}
