package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bbernstein/evlocator/backend-go/internal/api"
	"github.com/bbernstein/evlocator/backend-go/internal/models"
	"github.com/bbernstein/evlocator/backend-go/internal/station"
)

// maxBodyBytes bounds POST /nearest-stations bodies.
const maxBodyBytes = 1 << 20

// StationHandler serves the station endpoints over plain HTTP.
type StationHandler struct {
	finder models.StationFinder
}

func NewStationHandler(finder models.StationFinder) *StationHandler {
	return &StationHandler{finder: finder}
}

// RegisterRoutes sets up HTTP routes
func (h *StationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/stations", h.ListStations).Methods(http.MethodGet)
	router.HandleFunc("/stations/{id}", h.GetStation).Methods(http.MethodGet)
	router.HandleFunc("/station/{id}", h.GetStation).Methods(http.MethodGet)
	router.HandleFunc("/nearest-stations", h.NearestFromBody).Methods(http.MethodPost)
	router.HandleFunc("/nearest-stations", h.NearestFromQuery).Methods(http.MethodGet)
}

func (h *StationHandler) Health(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListStations returns every station, or a single one when ?stationId is set.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("stationId"); raw != "" {
		h.writeStation(w, r, raw)
		return
	}

	stations, err := h.finder.ListStations(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, stations)
}

func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	h.writeStation(w, r, mux.Vars(r)["id"])
}

func (h *StationHandler) writeStation(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := api.ParseStationID(rawID)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	st, err := h.finder.FindStation(r.Context(), id)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, st)
}

// NearestFromBody ranks stations for a JSON body of latitude, longitude,
// radiusKm (or range) and an optional limit.
func (h *StationHandler) NearestFromBody(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.WriteError(w, station.NewInvalidArgumentError("body", "request body too large"))
			return
		}
		api.WriteError(w, station.NewInvalidArgumentError("body", err.Error()))
		return
	}

	req, err := api.DecodeNearestRequest(string(body))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	query, limit, err := req.Query()
	if err != nil {
		api.WriteError(w, err)
		return
	}
	h.writeNearest(w, r, query, limit)
}

// NearestFromQuery reads lat, lon, radius and limit from the query string.
func (h *StationHandler) NearestFromQuery(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	query, limit, err := api.ParseNearestParams(params)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	h.writeNearest(w, r, query, limit)
}

func (h *StationHandler) writeNearest(w http.ResponseWriter, r *http.Request, query models.Query, limit int) {
	ranked, err := h.finder.FindNearestStations(r.Context(), query, limit)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ranked)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusNotFound, api.NewErrorResponse(api.KindNotFound, "Route not found"))
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusMethodNotAllowed, api.NewErrorResponse(api.KindMethodNotAllowed, "Method not allowed"))
}
