package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// NewRouter mounts the station routes, optionally under pathPrefix, and wraps
// them with CORS and request logging.
func NewRouter(handler *StationHandler, pathPrefix string) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	pathPrefix = strings.TrimRight(pathPrefix, "/")
	if pathPrefix != "" {
		sub := router.PathPrefix(pathPrefix).Subrouter()
		sub.NotFoundHandler = router.NotFoundHandler
		sub.MethodNotAllowedHandler = router.MethodNotAllowedHandler
		handler.RegisterRoutes(sub)
	} else {
		handler.RegisterRoutes(router)
	}

	// CORS wraps the router so preflight requests never reach route matching.
	return loggingMiddleware(corsMiddleware(router))
}
