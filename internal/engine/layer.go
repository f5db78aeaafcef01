package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bbernstein/layerjson/internal/cache"
	"github.com/bbernstein/layerjson/internal/config"
	"github.com/bbernstein/layerjson/internal/fetch"
	"github.com/bbernstein/layerjson/internal/layer"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/bbernstein/layerjson/internal/reconcile"
	"github.com/bbernstein/layerjson/internal/request"
	"github.com/bbernstein/layerjson/internal/viewport"
	"github.com/bbernstein/layerjson/pkg/http/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyAttached = errors.New("layer is already attached")
	ErrNotAttached     = errors.New("layer is not attached")

	// ErrDetached is the cancellation cause of every update still running
	// when the layer is detached.
	ErrDetached = errors.New("layer detached")
)

// Layer keeps a marker group in sync with the part of a map that is
// visible. It refetches when the view moves far enough to expose new area
// and reuses markers it has already built for the same location.
type Layer struct {
	cfg        *config.LayerConfig
	strategies reconcile.Options
	fetcher    fetch.Fetcher
	httpClient client.Interface
	logger     zerolog.Logger

	target     layer.Group
	markers    *cache.MarkerCache
	responses  *cache.ResponseCache
	reconciler *reconcile.Reconciler
	controller *request.Controller

	mu          sync.Mutex
	provider    viewport.Provider
	monitor     *viewport.Monitor
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelCauseFunc
	generation  uint64

	// reconcileMu orders reconciliation against Detach clearing the group.
	reconcileMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   map[EventType][]func(Event)
}

// New validates cfg and wires the layer. The returned layer is detached.
func New(cfg *config.LayerConfig, opts ...Option) (*Layer, error) {
	if cfg == nil {
		cfg = config.DefaultLayerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Layer{
		cfg:       cfg,
		logger:    log.Logger,
		markers:   cache.NewMarkerCache(),
		listeners: make(map[EventType][]func(Event)),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.target == nil {
		l.target = layer.NewFeatureGroup()
	}

	if l.fetcher == nil {
		if l.httpClient == nil {
			l.httpClient = client.New(client.Options{})
		}
		l.fetcher = fetch.NewHTTPFetcher(l.httpClient)
	}

	if cfg.ResponseCacheEnabled() {
		responses, err := cache.NewResponseCache(cfg.ResponseCacheSize, cfg.ResponseCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("creating response cache: %w", err)
		}
		l.responses = responses
		l.fetcher = fetch.NewCachingFetcher(l.fetcher, responses)
	}

	l.strategies.LocationField = cfg.LocationField
	l.strategies.TitleField = cfg.TitleField
	l.strategies.CacheEnabled = cfg.CacheEnabled
	l.strategies.Logger = &l.logger
	l.reconciler = reconcile.New(l.strategies, l.markers, l.target)

	controller, err := request.NewController(l.fetcher, cfg.URL,
		request.WithLogger(l.logger),
		request.WithHooks(request.Hooks{
			OnLoading: func(url string) {
				l.emit(Event{Type: EventDataLoading, URL: url})
			},
			OnLoaded: func(records models.Records) {
				l.emit(Event{Type: EventDataLoaded, Data: records})
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request controller: %w", err)
	}
	l.controller = controller

	return l, nil
}

// Attach binds the layer to provider, remembers the current view as the
// baseline and loads it. Moves of the provider trigger further updates until
// Detach. ctx bounds the initial update and every update started by a move.
func (l *Layer) Attach(ctx context.Context, provider viewport.Provider) error {
	l.mu.Lock()
	if l.provider != nil {
		l.mu.Unlock()
		return ErrAlreadyAttached
	}

	l.provider = provider
	l.monitor = viewport.NewMonitor(l.cfg.MinShiftMeters, provider.Center(), provider.Bounds())
	l.ctx, l.cancel = context.WithCancelCause(ctx)
	attachCtx := l.ctx
	l.generation++
	l.unsubscribe = provider.OnMoveEnd(l.onMoveEnd)
	l.mu.Unlock()

	l.logger.Debug().
		Str("center", provider.Center().String()).
		Msg("Layer attached")

	return l.Update(attachCtx)
}

// Detach stops listening to the provider, drops the in-flight request and
// removes every marker. The marker cache is discarded.
func (l *Layer) Detach() error {
	l.mu.Lock()
	if l.provider == nil {
		l.mu.Unlock()
		return ErrNotAttached
	}

	unsubscribe := l.unsubscribe
	l.cancel(ErrDetached)
	l.provider = nil
	l.monitor = nil
	l.unsubscribe = nil
	l.generation++
	l.mu.Unlock()

	unsubscribe()
	l.controller.Cancel()

	l.reconcileMu.Lock()
	l.target.ClearLayers()
	l.markers.Clear()
	l.reconcileMu.Unlock()

	l.logger.Debug().Msg("Layer detached")
	return nil
}

// Update fetches the records inside the current view and replaces the
// displayed markers with them. A pending update is canceled.
func (l *Layer) Update(ctx context.Context) error {
	l.mu.Lock()
	provider := l.provider
	generation := l.generation
	l.mu.Unlock()

	if provider == nil {
		return ErrNotAttached
	}

	q := models.NewQuery(provider.Bounds(), l.cfg.Precision)
	if _, err := l.controller.Issue(ctx, q, l.deliverer(generation)); err != nil {
		return fmt.Errorf("issuing update: %w", err)
	}
	return nil
}

func (l *Layer) deliverer(generation uint64) func(models.Records) {
	return func(records models.Records) {
		l.reconcileMu.Lock()
		defer l.reconcileMu.Unlock()

		l.mu.Lock()
		current := l.provider != nil && l.generation == generation
		l.mu.Unlock()
		if !current {
			l.logger.Debug().Int("record_count", len(records)).Msg("Dropping records for detached layer")
			return
		}

		l.reconciler.Reconcile(records)
	}
}

func (l *Layer) onMoveEnd() {
	l.mu.Lock()
	provider, monitor, ctx := l.provider, l.monitor, l.ctx
	l.mu.Unlock()

	if provider == nil {
		return
	}

	if !monitor.ShouldUpdate(provider.Center(), provider.Bounds()) {
		l.logger.Debug().Str("center", provider.Center().String()).Msg("View change too small, skipping update")
		return
	}

	if err := l.Update(ctx); err != nil && !errors.Is(err, ErrNotAttached) {
		l.logger.Warn().Err(err).Msg("Failed to update layer after move")
	}
}

// Attached reports whether the layer is bound to a provider.
func (l *Layer) Attached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.provider != nil
}

func (l *Layer) Attribution() string {
	return l.cfg.Attribution
}

// Target returns the group markers are displayed through.
func (l *Layer) Target() layer.Group {
	return l.target
}

// Layers returns the markers currently displayed.
func (l *Layer) Layers() []*models.Marker {
	return l.target.Layers()
}

// CacheStats returns statistics about the marker and response caches
func (l *Layer) CacheStats() map[string]uint64 {
	stats := l.markers.GetCacheStats()
	if l.responses != nil {
		stats["response_entries"] = uint64(l.responses.Len())
	}
	return stats
}

// Wait blocks until no fetch is outstanding.
func (l *Layer) Wait() {
	l.controller.Wait()
}
