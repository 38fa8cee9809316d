package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bbernstein/evlocator/backend-go/internal/models"
	"github.com/bbernstein/evlocator/backend-go/internal/station"
)

// NearestRequest is the JSON body of POST /nearest-stations. "range" is accepted
// as an alias of "radiusKm".
type NearestRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RadiusKm  *float64 `json:"radiusKm"`
	Range     *float64 `json:"range"`
	Limit     *int     `json:"limit"`
}

// DecodeNearestRequest parses a request body. Malformed JSON is an invalid argument.
func DecodeNearestRequest(body string) (NearestRequest, error) {
	var req NearestRequest
	if strings.TrimSpace(body) == "" {
		return req, station.NewInvalidArgumentError("body", "request body is required")
	}
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return req, station.NewInvalidArgumentError("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return req, nil
}

// Query converts the request into a query and limit. Missing fields are reported
// as invalid arguments; range checks are left to the ranker.
func (r NearestRequest) Query() (models.Query, int, error) {
	if r.Latitude == nil {
		return models.Query{}, 0, station.NewInvalidArgumentError("latitude", "is required")
	}
	if r.Longitude == nil {
		return models.Query{}, 0, station.NewInvalidArgumentError("longitude", "is required")
	}
	radius := r.RadiusKm
	if radius == nil {
		radius = r.Range
	}
	if radius == nil {
		return models.Query{}, 0, station.NewInvalidArgumentError("radius", "is required")
	}

	limit := 0
	if r.Limit != nil {
		if *r.Limit < 0 {
			return models.Query{}, 0, station.NewInvalidArgumentError("limit", "must not be negative")
		}
		limit = *r.Limit
	}

	query := models.Query{
		Point:    models.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude},
		RadiusKm: *radius,
	}
	return query, limit, station.ValidateQuery(query)
}

// ParseNearestParams reads lat, lon, radius (or radiusKm / range) and limit from query-string parameters.
func ParseNearestParams(params map[string]string) (models.Query, int, error) {
	var req NearestRequest

	fields := []struct {
		name  string
		keys  []string
		value **float64
	}{
		{"latitude", []string{"lat", "latitude"}, &req.Latitude},
		{"longitude", []string{"lon", "longitude"}, &req.Longitude},
		{"radius", []string{"radius", "radiusKm", "range"}, &req.RadiusKm},
	}
	for _, f := range fields {
		raw, ok := firstParam(params, f.keys...)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Query{}, 0, station.NewInvalidArgumentError(f.name, fmt.Sprintf("%q is not a number", raw))
		}
		*f.value = &v
	}

	if raw, ok := firstParam(params, "limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return models.Query{}, 0, station.NewInvalidArgumentError("limit", fmt.Sprintf("%q is not an integer", raw))
		}
		req.Limit = &limit
	}

	return req.Query()
}

// ParseStationID parses a path or query station id.
func ParseStationID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, station.NewInvalidArgumentError("id", fmt.Sprintf("%q is not a valid station id", raw))
	}
	return id, nil
}

func firstParam(params map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := params[k]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}
