package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/station"
	"github.com/bbernstein/evlocator/backend-go/internal/storage"
)

const (
	KindNotFound         = "NotFound"
	KindInternal         = "Internal"
	KindMethodNotAllowed = "MethodNotAllowed"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type ErrorResponse struct {
	APIResponse
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func NewErrorResponse(kind, message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Kind:        kind,
		Error:       message,
	}
}

var defaultHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

func headers() map[string]string {
	h := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		h[k] = v
	}
	return h
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error(KindInternal, "Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(),
		Body:       string(jsonBody),
	}, nil
}

func Error(kind, message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(kind, message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}

// FromError converts a finder error into an API Gateway response.
func FromError(err error) (events.APIGatewayProxyResponse, error) {
	status, kind, message := Classify(err)
	return Error(kind, message, status)
}

// Classify maps an error to an HTTP status, a machine-readable kind and a client-facing message.
// Internal failures are logged and hidden behind a generic message.
func Classify(err error) (int, string, string) {
	var invalidErr *station.InvalidArgumentError
	switch {
	case errors.As(err, &invalidErr):
		return http.StatusBadRequest, invalidErr.Kind(), invalidErr.Error()
	case errors.Is(err, station.ErrInvalidArgument):
		return http.StatusBadRequest, station.KindInvalidArgument, err.Error()
	case errors.Is(err, storage.ErrStationNotFound):
		return http.StatusNotFound, KindNotFound, "Station not found"
	default:
		log.Error().Err(err).Msg("Request failed")
		return http.StatusInternalServerError, KindInternal, "Error finding stations"
	}
}

// WriteJSON writes body as a JSON response with the same headers as the Lambda responses.
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	for k, v := range defaultHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError writes the structured error body for err.
func WriteError(w http.ResponseWriter, err error) {
	status, kind, message := Classify(err)
	WriteJSON(w, status, NewErrorResponse(kind, message))
}
