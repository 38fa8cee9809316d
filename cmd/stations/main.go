package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/evlocator/backend-go/internal/api"
	"github.com/bbernstein/evlocator/backend-go/internal/app"
	"github.com/bbernstein/evlocator/backend-go/internal/config"
	"github.com/bbernstein/evlocator/backend-go/internal/handler"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	// flushPending blocks until background snapshot uploads finish. Lambda
	// freezes the process once a response is returned.
	flushPending = func() {}
	setupOnce    sync.Once
	initHandler  = defaultInitHandler
)

func defaultInitHandler(ctx context.Context) (*handler.StationsHandler, func(), error) {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	svc, err := app.NewService(ctx, cfg, config.GetCacheConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("initializing station service: %w", err)
	}
	return handler.NewStationsHandler(svc.Finder), svc.Finder.Flush, nil
}

func initializeService() error {
	var initError error
	setupOnce.Do(func() {
		h, flush, err := initHandler(context.Background())
		if err != nil {
			initError = err
			log.Error().Err(err).Msg("Failed to initialize stations handler")
			return
		}
		stationsHandler = h
		if flush != nil {
			flushPending = flush
		}
	})
	return initError
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if stationsHandler == nil {
		return api.Error(api.KindInternal, "Handler not initialized", http.StatusInternalServerError)
	}
	defer flushPending()
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	if err := initializeService(); err != nil {
		log.Fatal().Err(err).Msg("Cannot start stations function")
	}
	lambdaStart(handleRequest)
}
