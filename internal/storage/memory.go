package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

// MemoryStationStore implements StationStore on top of a slice kept in insertion order.
type MemoryStationStore struct {
	stations []models.Station
	index    map[int64]int
	mu       sync.RWMutex
}

var _ StationStore = (*MemoryStationStore)(nil)

func NewMemoryStationStore(stations []models.Station) *MemoryStationStore {
	m := &MemoryStationStore{
		stations: make([]models.Station, 0, len(stations)),
		index:    make(map[int64]int, len(stations)),
	}
	for _, s := range stations {
		m.Put(s)
	}
	return m
}

// Put inserts a station or replaces the one with the same id in place.
func (m *MemoryStationStore) Put(station models.Station) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, exists := m.index[station.ID]; exists {
		m.stations[i] = station
		return
	}
	m.index[station.ID] = len(m.stations)
	m.stations = append(m.stations, station)
}

func (m *MemoryStationStore) ListStations(_ context.Context) ([]models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Station, len(m.stations))
	copy(result, m.stations)
	return result, nil
}

func (m *MemoryStationStore) GetStation(_ context.Context, id int64) (*models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, exists := m.index[id]
	if !exists {
		return nil, fmt.Errorf("station %d: %w", id, ErrStationNotFound)
	}
	station := m.stations[i]
	return &station, nil
}

// LoadSeedFile reads a JSON array of stations from path.
func LoadSeedFile(path string) ([]models.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %q: %w", path, err)
	}

	var stations []models.Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("decoding seed file %q: %w", path, err)
	}
	return stations, nil
}
