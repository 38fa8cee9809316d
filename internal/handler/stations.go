package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/api"
	"github.com/bbernstein/evlocator/backend-go/internal/models"
)

type StationsHandler struct {
	stationFinder models.StationFinder
}

func NewStationsHandler(finder models.StationFinder) *StationsHandler {
	return &StationsHandler{
		stationFinder: finder,
	}
}

// HandleRequest dispatches an API Gateway proxy request:
//
//	GET  /health
//	GET  /stations            (or ?stationId=N for a single station)
//	GET  /stations/{id}      (also /station/{id})
//	GET  /nearest-stations?lat=&lon=&radius=&limit=
//	POST /nearest-stations    {"latitude","longitude","radiusKm"|"range","limit"}
func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	method := request.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	segments := pathSegments(request.Path)

	log.Debug().Str("method", method).Str("path", request.Path).Msg("Handling Lambda request")

	switch {
	case method == http.MethodOptions:
		return api.Success(struct{}{})
	case len(segments) == 1 && segments[0] == "health" && method == http.MethodGet:
		return api.Success(map[string]string{"status": "healthy"})
	case len(segments) == 1 && segments[0] == "nearest-stations":
		return h.handleNearest(ctx, method, request)
	case len(segments) == 2 && (segments[0] == "stations" || segments[0] == "station") && method == http.MethodGet:
		return h.handleStation(ctx, segments[1])
	case (len(segments) == 0 || (len(segments) == 1 && segments[0] == "stations")) && method == http.MethodGet:
		if stationID, ok := request.QueryStringParameters["stationId"]; ok {
			return h.handleStation(ctx, stationID)
		}
		if len(segments) == 0 {
			return h.handleNearest(ctx, method, request)
		}
		return h.handleList(ctx)
	}

	return api.Error(api.KindNotFound, "Route not found", http.StatusNotFound)
}

func (h *StationsHandler) handleNearest(ctx context.Context, method string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var (
		query models.Query
		limit int
		err   error
	)
	switch method {
	case http.MethodPost:
		var req api.NearestRequest
		req, err = api.DecodeNearestRequest(request.Body)
		if err == nil {
			query, limit, err = req.Query()
		}
	case http.MethodGet:
		query, limit, err = api.ParseNearestParams(request.QueryStringParameters)
	default:
		return api.Error(api.KindMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed)
	}
	if err != nil {
		return api.FromError(err)
	}

	stations, err := h.stationFinder.FindNearestStations(ctx, query, limit)
	if err != nil {
		return api.FromError(err)
	}
	return api.Success(stations)
}

func (h *StationsHandler) handleStation(ctx context.Context, rawID string) (events.APIGatewayProxyResponse, error) {
	id, err := api.ParseStationID(rawID)
	if err != nil {
		return api.FromError(err)
	}

	station, err := h.stationFinder.FindStation(ctx, id)
	if err != nil {
		return api.FromError(err)
	}
	return api.Success(station)
}

func (h *StationsHandler) handleList(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	stations, err := h.stationFinder.ListStations(ctx)
	if err != nil {
		return api.FromError(err)
	}
	return api.Success(stations)
}

func pathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
