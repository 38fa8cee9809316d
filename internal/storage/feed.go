package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
	"github.com/bbernstein/evlocator/backend-go/pkg/http/client"
)

// FeedError reports a failed request to the upstream station feed.
type FeedError struct {
	Message string
	Err     error
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("station feed error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("station feed error: %s", e.Message)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

func NewFeedError(message string, err error) *FeedError {
	return &FeedError{
		Message: message,
		Err:     err,
	}
}

// FeedStationStore reads the station list from a remote JSON endpoint returning
// an array of stations.
type FeedStationStore struct {
	httpClient client.Interface
	path       string
}

var _ StationStore = (*FeedStationStore)(nil)

func NewFeedStationStore(httpClient client.Interface, path string) *FeedStationStore {
	if path == "" {
		path = "/stations"
	}
	return &FeedStationStore{
		httpClient: httpClient,
		path:       path,
	}
}

func (f *FeedStationStore) ListStations(ctx context.Context) ([]models.Station, error) {
	resp, err := f.httpClient.Get(ctx, f.path)
	if err != nil {
		return nil, NewFeedError("fetching stations", err)
	}
	if resp == nil {
		return nil, NewFeedError("no response", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewFeedError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	stations := make([]models.Station, 0)
	if err := json.Unmarshal(resp.Body, &stations); err != nil {
		return nil, NewFeedError("decoding response", err)
	}

	log.Debug().Str("path", f.path).Int("station_count", len(stations)).Msg("Fetched stations from feed")
	return stations, nil
}

func (f *FeedStationStore) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	stations, err := f.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range stations {
		if s.ID == id {
			station := s
			return &station, nil
		}
	}
	return nil, fmt.Errorf("station %d: %w", id, ErrStationNotFound)
}
