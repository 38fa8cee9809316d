package station

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

func createTestStation(id int64, lat, lon float64, cars int) models.Station {
	return models.Station{
		ID:        id,
		Name:      fmt.Sprintf("Test Station %d", id),
		Location:  fmt.Sprintf("Bay %d", id),
		Latitude:  lat,
		Longitude: lon,
		Cars:      cars,
	}
}

func originQuery(radius float64) models.Query {
	return models.Query{
		Point:    models.Coordinate{Latitude: 0, Longitude: 0},
		RadiusKm: radius,
	}
}

func ids(ranked []models.RankedStation) []int64 {
	out := make([]int64, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}

func TestValidateQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     models.Query
		wantField string
	}{
		{name: "valid", query: originQuery(10)},
		{name: "zero radius", query: originQuery(0), wantField: "radius"},
		{name: "negative radius", query: originQuery(-5), wantField: "radius"},
		{name: "NaN radius", query: originQuery(math.NaN()), wantField: "radius"},
		{name: "infinite radius", query: originQuery(math.Inf(1)), wantField: "radius"},
		{
			name:      "latitude out of range",
			query:     models.Query{Point: models.Coordinate{Latitude: 91}, RadiusKm: 10},
			wantField: "latitude",
		},
		{
			name:      "longitude out of range",
			query:     models.Query{Point: models.Coordinate{Longitude: -181}, RadiusKm: 10},
			wantField: "longitude",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateQuery(tt.query)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))

			var invalidErr *InvalidArgumentError
			require.True(t, errors.As(err, &invalidErr))
			assert.Equal(t, tt.wantField, invalidErr.Field)
			assert.Equal(t, KindInvalidArgument, invalidErr.Kind())
		})
	}
}

func TestFindNearest_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    models.Query
		stations []models.Station
		limit    int
		wantIDs  []int64
	}{
		{
			name:  "only the station inside the radius survives",
			query: originQuery(50),
			stations: []models.Station{
				createTestStation(1, 0, 0.1, 3),
				createTestStation(2, 0, 1.0, 1),
				createTestStation(3, 10, 10, 0),
			},
			limit:   5,
			wantIDs: []int64{1},
		},
		{
			name:  "sorted by cars rather than distance",
			query: originQuery(500),
			stations: []models.Station{
				createTestStation(1, 0, 0.1, 3),
				createTestStation(2, 0, 1.0, 1),
				createTestStation(3, 0, 2.0, 0),
			},
			limit:   5,
			wantIDs: []int64{3, 2, 1},
		},
		{
			name:  "equal cars keep input order",
			query: originQuery(100),
			stations: []models.Station{
				createTestStation(10, 0.1, 0, 2),
				createTestStation(11, -0.1, 0, 2),
				createTestStation(12, 0, 0.1, 1),
			},
			limit:   5,
			wantIDs: []int64{12, 10, 11},
		},
		{
			name:  "identical distance and cars keep input order",
			query: originQuery(100),
			stations: []models.Station{
				createTestStation(21, 0, 0.2, 4),
				createTestStation(20, 0, 0.2, 4),
			},
			limit:   5,
			wantIDs: []int64{21, 20},
		},
		{
			name:     "empty station list",
			query:    originQuery(100),
			stations: []models.Station{},
			limit:    5,
			wantIDs:  []int64{},
		},
		{
			name:  "nothing within radius",
			query: originQuery(1),
			stations: []models.Station{
				createTestStation(1, 0, 1, 0),
			},
			limit:   5,
			wantIDs: []int64{},
		},
		{
			name:  "non-positive limit uses default",
			query: originQuery(1000),
			stations: []models.Station{
				createTestStation(1, 0, 0.1, 6),
				createTestStation(2, 0, 0.2, 5),
				createTestStation(3, 0, 0.3, 4),
				createTestStation(4, 0, 0.4, 3),
				createTestStation(5, 0, 0.5, 2),
				createTestStation(6, 0, 0.6, 1),
			},
			limit:   0,
			wantIDs: []int64{6, 5, 4, 3, 2},
		},
		{
			name:  "custom limit truncates",
			query: originQuery(1000),
			stations: []models.Station{
				createTestStation(1, 0, 0.1, 2),
				createTestStation(2, 0, 0.2, 1),
				createTestStation(3, 0, 0.3, 0),
			},
			limit:   2,
			wantIDs: []int64{3, 2},
		},
		{
			name:  "stations with invalid coordinates are skipped",
			query: originQuery(1000),
			stations: []models.Station{
				createTestStation(1, 95, 0, 0),
				createTestStation(2, 0, 0.1, 1),
			},
			limit:   5,
			wantIDs: []int64{2},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FindNearest(tt.query, tt.stations, tt.limit)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestFindNearest_ReportsDistance(t *testing.T) {
	got, err := FindNearest(originQuery(50), []models.Station{createTestStation(1, 0, 0.1, 3)}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.InDelta(t, 11.1, got[0].DistanceKm, 0.1)
	assert.Equal(t, "Test Station 1", got[0].Name)
	assert.Equal(t, 3, got[0].Cars)
}

func TestFindNearest_InclusiveBoundary(t *testing.T) {
	s := createTestStation(1, 0, 0.5, 1)
	edge := Distance(models.Coordinate{}, s.Coordinate())

	got, err := FindNearest(originQuery(edge), []models.Station{s}, 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = FindNearest(originQuery(edge*0.999), []models.Station{s}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindNearest_InvalidQueryReturnsNoResults(t *testing.T) {
	stations := []models.Station{createTestStation(1, 0, 0, 1)}

	for _, radius := range []float64{0, -1, math.NaN()} {
		got, err := FindNearest(originQuery(radius), stations, 5)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestFindNearest_DoesNotMutateInput(t *testing.T) {
	stations := []models.Station{
		createTestStation(1, 0, 0.1, 5),
		createTestStation(2, 0, 0.2, 0),
		createTestStation(3, 0, 0.3, 2),
	}
	snapshot := append([]models.Station(nil), stations...)

	_, err := FindNearest(originQuery(100), stations, 2)
	require.NoError(t, err)
	assert.Equal(t, snapshot, stations)
}

func TestFindNearest_Properties(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := r.Intn(40)
		stations := make([]models.Station, n)
		for i := range stations {
			stations[i] = createTestStation(int64(i), r.Float64()*4-2, r.Float64()*4-2, r.Intn(4))
		}
		query := originQuery(r.Float64()*300 + 1)
		limit := r.Intn(8) + 1

		got, err := FindNearest(query, stations, limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), limit)

		for i, rs := range got {
			assert.LessOrEqual(t, rs.DistanceKm, query.RadiusKm)
			if i == 0 {
				continue
			}
			prev := got[i-1]
			assert.LessOrEqual(t, prev.Cars, rs.Cars, "sorted by cars")
			if prev.Cars == rs.Cars {
				// ids were assigned in input order
				assert.Less(t, prev.ID, rs.ID, "stable for equal cars")
			}
		}

		all, err := FindNearest(originQuery(math.Pi*EarthRadiusKm), stations, limit)
		require.NoError(t, err)
		want := limit
		if n < want {
			want = n
		}
		assert.Len(t, all, want)
	}
}
