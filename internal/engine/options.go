package engine

import (
	"github.com/bbernstein/layerjson/internal/fetch"
	"github.com/bbernstein/layerjson/internal/layer"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/bbernstein/layerjson/internal/reconcile"
	"github.com/bbernstein/layerjson/pkg/http/client"
	"github.com/rs/zerolog"
)

type Option func(*Layer)

// WithFilter skips every record for which fn returns false.
func WithFilter(fn reconcile.FilterFunc) Option {
	return func(l *Layer) {
		l.strategies.Filter = fn
	}
}

// WithMarkerBuilder replaces the default point marker.
func WithMarkerBuilder(fn reconcile.MarkerBuilder) Option {
	return func(l *Layer) {
		l.strategies.BuildMarker = fn
	}
}

// WithIconBuilder picks the icon of default markers.
func WithIconBuilder(fn reconcile.IconBuilder) Option {
	return func(l *Layer) {
		l.strategies.BuildIcon = fn
	}
}

func WithPopupBuilder(fn reconcile.PopupBuilder) Option {
	return func(l *Layer) {
		l.strategies.BuildPopup = fn
	}
}

func WithPopupOptions(opts models.PopupOptions) Option {
	return func(l *Layer) {
		l.strategies.PopupOptions = opts
	}
}

// WithOnEachMarker runs fn on every newly built marker.
func WithOnEachMarker(fn reconcile.MarkerHook) Option {
	return func(l *Layer) {
		l.strategies.OnEachMarker = fn
	}
}

// WithTargetLayer displays markers through g instead of a managed group.
func WithTargetLayer(g layer.Group) Option {
	return func(l *Layer) {
		l.target = g
	}
}

// WithFetcher replaces the HTTP transport.
func WithFetcher(f fetch.Fetcher) Option {
	return func(l *Layer) {
		l.fetcher = f
	}
}

// WithHTTPClient sets the client the default HTTP fetcher uses.
func WithHTTPClient(c client.Interface) Option {
	return func(l *Layer) {
		l.httpClient = c
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Layer) {
		l.logger = logger
	}
}
