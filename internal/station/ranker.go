package station

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

// DefaultLimit is the number of stations returned when the caller does not ask for a specific count.
const DefaultLimit = 5

// ValidateQuery checks the query point and radius. It returns an *InvalidArgumentError on failure.
func ValidateQuery(query models.Query) error {
	r := query.RadiusKm
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return NewInvalidArgumentError("radius", "must be a finite number")
	}
	if r <= 0 {
		return NewInvalidArgumentError("radius", "must be greater than zero")
	}

	lat, lon := query.Point.Latitude, query.Point.Longitude
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return NewInvalidArgumentError("latitude", "must be between -90 and 90")
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return NewInvalidArgumentError("longitude", "must be between -180 and 180")
	}
	return nil
}

// FindNearest returns the stations within query.RadiusKm of query.Point,
// ordered by ascending available cars and truncated to limit entries.
//
// Ranking is by Cars, not by distance: stations with the fewest free charge
// points come first. Stations with equal Cars keep their input order.
// A limit <= 0 falls back to DefaultLimit. The stations slice is not modified.
func FindNearest(query models.Query, stations []models.Station, limit int) ([]models.RankedStation, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]models.RankedStation, 0, len(stations))
	for _, s := range stations {
		pos := s.Coordinate()
		if err := pos.Validate(); err != nil {
			log.Debug().Int64("station_id", s.ID).Err(err).Msg("Skipping station with invalid coordinates")
			continue
		}

		distance := Distance(query.Point, pos)
		if distance > query.RadiusKm {
			continue
		}
		ranked = append(ranked, models.RankedStation{
			Station:    s,
			DistanceKm: distance,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Cars < ranked[j].Cars
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
