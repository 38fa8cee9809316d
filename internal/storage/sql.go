package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

const (
	listStationsQuery = `
		SELECT id, name, location, latitude, longitude, cars
		FROM charging_stations
		ORDER BY id`

	getStationQuery = `
		SELECT id, name, location, latitude, longitude, cars
		FROM charging_stations
		WHERE id = $1`
)

// SQLStationStore reads stations from the charging_stations table.
type SQLStationStore struct {
	db *sqlx.DB
}

var _ StationStore = (*SQLStationStore)(nil)

func NewSQLStationStore(db *sqlx.DB) *SQLStationStore {
	return &SQLStationStore{db: db}
}

// OpenDB opens and pings a Postgres connection pool using either the lib/pq or the pgx driver.
func OpenDB(ctx context.Context, driver, databaseURL string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverPgx:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("empty database URL")
	}

	db, err := sqlx.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verifying %s connection: %w", driver, err)
	}
	return db, nil
}

func (s *SQLStationStore) ListStations(ctx context.Context) ([]models.Station, error) {
	stations := make([]models.Station, 0)
	if err := s.db.SelectContext(ctx, &stations, listStationsQuery); err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	return stations, nil
}

func (s *SQLStationStore) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	var station models.Station
	err := s.db.GetContext(ctx, &station, getStationQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("station %d: %w", id, ErrStationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying station %d: %w", id, err)
	}
	return &station, nil
}
