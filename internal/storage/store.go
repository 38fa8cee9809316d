package storage

import (
	"context"
	"errors"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

// ErrStationNotFound is returned by GetStation when no station has the requested id.
var ErrStationNotFound = errors.New("station not found")

// StationStore supplies read-only station snapshots.
type StationStore interface {
	// ListStations returns every station in a stable order.
	ListStations(ctx context.Context) ([]models.Station, error)

	// GetStation retrieves a single station by id.
	GetStation(ctx context.Context, id int64) (*models.Station, error)
}
