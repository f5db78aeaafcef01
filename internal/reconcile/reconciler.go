package reconcile

import (
	"sync"

	"github.com/bbernstein/layerjson/internal/cache"
	"github.com/bbernstein/layerjson/internal/layer"
	"github.com/bbernstein/layerjson/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	LocationField string
	TitleField    string
	CacheEnabled  bool

	Filter       FilterFunc
	BuildMarker  MarkerBuilder
	BuildIcon    IconBuilder
	BuildPopup   PopupBuilder
	PopupOptions models.PopupOptions
	OnEachMarker MarkerHook

	Logger *zerolog.Logger
}

// Result counts what one reconciliation did.
type Result struct {
	Created  int
	Reused   int
	Filtered int
	Invalid  int
}

func (r Result) Visible() int {
	return r.Created + r.Reused
}

// Reconciler turns a fetched record set into the visible marker set.
type Reconciler struct {
	locationField string
	cacheEnabled  bool

	filter       FilterFunc
	buildMarker  MarkerBuilder
	buildPopup   PopupBuilder
	popupOptions models.PopupOptions
	onEachMarker MarkerHook

	cache  *cache.MarkerCache
	target layer.Group
	logger zerolog.Logger
	mu     sync.Mutex
}

// New fills every missing strategy with its default.
func New(opts Options, markerCache *cache.MarkerCache, target layer.Group) *Reconciler {
	r := &Reconciler{
		locationField: opts.LocationField,
		cacheEnabled:  opts.CacheEnabled,
		filter:        opts.Filter,
		buildMarker:   opts.BuildMarker,
		buildPopup:    opts.BuildPopup,
		popupOptions:  opts.PopupOptions,
		onEachMarker:  opts.OnEachMarker,
		cache:         markerCache,
		target:        target,
		logger:        log.Logger,
	}
	if r.filter == nil {
		r.filter = acceptAll
	}
	if r.buildMarker == nil {
		r.buildMarker = DefaultMarkerBuilder(opts.TitleField, opts.BuildIcon)
	}
	if r.buildPopup == nil {
		r.buildPopup = noPopup
	}
	if r.onEachMarker == nil {
		r.onEachMarker = noHook
	}
	if r.cache == nil {
		r.cache = cache.NewMarkerCache()
	}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	}
	return r
}

// Reconcile clears the target and repopulates it from records. With caching
// enabled, a record at an already seen location re-displays the cached
// marker without rebuilding it.
func (r *Reconciler) Reconcile(records models.Records) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.target.ClearLayers()

	var res Result
	for _, record := range records {
		if !r.filter(record) {
			res.Filtered++
			continue
		}

		location, err := record.Location(r.locationField)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Skipping record without location")
			res.Invalid++
			continue
		}

		var key string
		if r.cacheEnabled {
			key = cache.GeoKey(location.Lat, location.Lng)
			if marker, ok := r.cache.Get(key); ok {
				r.target.AddLayer(marker)
				res.Reused++
				continue
			}
		}

		marker := r.addMarker(record, location)
		if marker == nil {
			res.Invalid++
			continue
		}
		if r.cacheEnabled {
			r.cache.Put(key, marker)
		}
		res.Created++
	}

	r.logger.Debug().
		Int("record_count", len(records)).
		Int("created", res.Created).
		Int("reused", res.Reused).
		Int("filtered", res.Filtered).
		Int("invalid", res.Invalid).
		Msg("Reconciled markers")

	return res
}

func (r *Reconciler) addMarker(record models.Record, location models.LatLng) *models.Marker {
	marker := r.buildMarker(record, location)
	if marker == nil {
		r.logger.Warn().Str("location", location.String()).Msg("Marker builder returned no marker")
		return nil
	}

	if content, ok := r.buildPopup(record, marker); ok {
		marker.BindPopup(content, r.popupOptions)
	}

	r.onEachMarker(record, marker)
	r.target.AddLayer(marker)

	return marker
}
