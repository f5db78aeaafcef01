package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/bbernstein/layerjson/internal/config"
	"github.com/bbernstein/layerjson/internal/engine"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/bbernstein/layerjson/internal/viewport"
	"github.com/bbernstein/layerjson/pkg/http/client"
	"github.com/rs/zerolog/log"
)

const defaultView = "47.50,-122.45,47.70,-122.20"

// tour is the simulated sequence of map moves.
type tour struct {
	start models.Bounds
	steps int
	dLat  float64
	dLng  float64
}

// parseView reads "minlat,minlon,maxlat,maxlon".
func parseView(s string) (models.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.Bounds{}, fmt.Errorf("view %q: expected minlat,minlon,maxlat,maxlon", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.Bounds{}, fmt.Errorf("view %q: %w", s, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return models.Bounds{}, fmt.Errorf("view %q: south-west corner must come first", s)
	}

	return models.NewBounds(models.NewLatLng(v[0], v[1]), models.NewLatLng(v[2], v[3])), nil
}

func parsePan(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("pan %q: expected dlat,dlng", s)
	}
	dLat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pan %q: %w", s, err)
	}
	dLng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pan %q: %w", s, err)
	}
	return dLat, dLng, nil
}

func tourFromEnv() (tour, error) {
	start, err := parseView(envOr("VIEW_BOUNDS", defaultView))
	if err != nil {
		return tour{}, err
	}
	dLat, dLng, err := parsePan(envOr("VIEW_PAN", "0,0.1"))
	if err != nil {
		return tour{}, err
	}
	steps, err := strconv.Atoi(envOr("VIEW_STEPS", "5"))
	if err != nil || steps < 0 {
		return tour{}, fmt.Errorf("VIEW_STEPS must be a non-negative integer")
	}
	return tour{start: start, steps: steps, dLat: dLat, dLng: dLng}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// run attaches a layer to an in-memory map, walks the tour and reports what
// the layer shows after every move.
func run(ctx context.Context, layer *engine.Layer, t tour) error {
	m := viewport.NewMap(t.start)

	layer.On(engine.EventDataLoading, func(e engine.Event) {
		log.Info().Str("url", e.URL).Msg("Loading points")
	})
	layer.On(engine.EventDataLoaded, func(e engine.Event) {
		log.Info().Int("record_count", len(e.Data)).Msg("Points loaded")
	})

	if err := layer.Attach(ctx, m); err != nil {
		return fmt.Errorf("attaching layer: %w", err)
	}
	layer.Wait()
	report(layer, m, 0)

	for step := 1; step <= t.steps; step++ {
		if err := ctx.Err(); err != nil {
			break
		}
		m.PanBy(t.dLat, t.dLng)
		layer.Wait()
		report(layer, m, step)
	}

	if err := layer.Detach(); err != nil {
		return fmt.Errorf("detaching layer: %w", err)
	}
	layer.Wait()
	return nil
}

func report(layer *engine.Layer, m *viewport.Map, step int) {
	stats := layer.CacheStats()
	log.Info().
		Int("step", step).
		Str("center", m.Center().String()).
		Int("markers", len(layer.Layers())).
		Uint64("marker_hits", stats["marker_hits"]).
		Uint64("marker_misses", stats["marker_misses"]).
		Msg("View updated")
}

func main() {
	config.LoadDotEnv()
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := tourFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid view configuration")
	}

	layerCfg := config.GetLayerConfig()
	httpClient := client.New(client.Options{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
	})

	layer, err := engine.New(layerCfg,
		engine.WithHTTPClient(httpClient),
		engine.WithLogger(log.Logger),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create layer")
	}
	if a := layer.Attribution(); a != "" {
		log.Info().Str("attribution", a).Msg("Data attribution")
	}

	if err := run(ctx, layer, t); err != nil {
		log.Fatal().Err(err).Msg("Layer run failed")
	}
}
