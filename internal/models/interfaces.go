package models

import "context"

type StationFinder interface {
	FindStation(ctx context.Context, stationID int64) (*Station, error)
	ListStations(ctx context.Context) ([]Station, error)
	FindNearestStations(ctx context.Context, query Query, limit int) ([]RankedStation, error)
}
