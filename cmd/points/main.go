package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/layerjson/internal/api"
	"github.com/bbernstein/layerjson/internal/config"
	"github.com/bbernstein/layerjson/internal/handler"
	"github.com/bbernstein/layerjson/internal/points"
	"github.com/rs/zerolog/log"
)

var (
	pointsHandler *handler.PointsHandler
	setupOnce     sync.Once
	initHandler   = defaultInitHandler
)

func defaultInitHandler(ctx context.Context) (*handler.PointsHandler, error) {
	cfg := config.GetPointsConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	source, err := points.NewSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing point source: %w", err)
	}

	index := points.NewIndex(source, cfg.GetRefreshTTL())
	return handler.NewPointsHandler(index, cfg.ResultLimit), nil
}

func handleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if pointsHandler == nil {
		return api.Error("Handler not initialized", http.StatusInternalServerError)
	}
	log.Debug().Interface("params", event.QueryStringParameters).Msg("Handling points request")
	return pointsHandler.HandleRequest(ctx, event)
}

func InitializeService(ctx context.Context) error {
	var initError error
	setupOnce.Do(func() {
		log.Debug().Msg("Initializing points service...")
		var err error
		pointsHandler, err = initHandler(ctx)
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
			return
		}
		log.Debug().Msg("Points service initialized successfully")
	})
	return initError
}

func main() {
	config.LoadDotEnv()
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	log.Info().Str("env", cfg.Environment).Msg("Environment")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := InitializeService(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}

	if cfg.Environment == "local" || cfg.Environment == "development" {
		if err := serveLocal(ctx, os.Getenv("PORT")); err != nil {
			log.Fatal().Err(err).Msg("Local server failed")
		}
		return
	}
	lambda.Start(handleRequest)
}
