package config

import (
	"fmt"
	"os"
	"time"

	"github.com/bbernstein/layerjson/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	DefaultURL            = "search.php?lat1={minlat}&lat2={maxlat}&lon1={minlon}&lon2={maxlon}"
	defaultLocationField  = "loc"
	defaultTitleField     = "title"
	defaultMinShiftMeters = 8000
	defaultPrecision      = 6
	defaultResponseTTL    = time.Minute
)

// queryKeys are the placeholders a layer URL template may use.
var queryKeys = map[string]bool{
	"minlat": true,
	"maxlat": true,
	"minlon": true,
	"maxlon": true,
}

var validate = validator.New()

// LayerConfig holds the data options of a JSON layer. Hooks such as filters
// and marker builders are passed to the engine as functional options.
type LayerConfig struct {
	// URL is the request template with {minlat} {maxlat} {minlon} {maxlon}
	URL           string `validate:"required"`
	LocationField string `validate:"required"`
	TitleField    string

	// MinShiftMeters is how far the center must move before refetching
	MinShiftMeters float64 `validate:"gte=0"`
	Precision      int     `validate:"gte=0,lte=20"`
	CacheEnabled   bool
	Attribution    string

	// Response cache settings, disabled when ResponseCacheSize is 0
	ResponseCacheSize int           `validate:"gte=0"`
	ResponseCacheTTL  time.Duration `validate:"gte=0"`
}

// DefaultLayerConfig returns the layer defaults.
func DefaultLayerConfig() *LayerConfig {
	return &LayerConfig{
		URL:               DefaultURL,
		LocationField:     defaultLocationField,
		TitleField:        defaultTitleField,
		MinShiftMeters:    defaultMinShiftMeters,
		Precision:         defaultPrecision,
		CacheEnabled:      true,
		ResponseCacheTTL:  defaultResponseTTL,
		ResponseCacheSize: 0,
	}
}

// GetLayerConfig returns the layer configuration from environment variables or defaults
func GetLayerConfig() *LayerConfig {
	d := DefaultLayerConfig()
	cfg := &LayerConfig{
		URL:               getEnvOrDefault("LAYER_URL", d.URL),
		LocationField:     getEnvOrDefault("LAYER_LOCATION_FIELD", d.LocationField),
		TitleField:        getEnvOrDefault("LAYER_TITLE_FIELD", d.TitleField),
		MinShiftMeters:    getEnvFloat("LAYER_MIN_SHIFT_METERS", d.MinShiftMeters),
		Precision:         getEnvInt("LAYER_PRECISION", d.Precision),
		CacheEnabled:      getEnvBool("LAYER_CACHE", d.CacheEnabled),
		Attribution:       os.Getenv("LAYER_ATTRIBUTION"),
		ResponseCacheSize: getEnvInt("LAYER_RESPONSE_CACHE_SIZE", d.ResponseCacheSize),
		ResponseCacheTTL:  getDurationEnvOrDefault("LAYER_RESPONSE_CACHE_TTL", d.ResponseCacheTTL),
	}

	log.Debug().
		Str("URL", cfg.URL).
		Str("LocationField", cfg.LocationField).
		Str("TitleField", cfg.TitleField).
		Float64("MinShiftMeters", cfg.MinShiftMeters).
		Int("Precision", cfg.Precision).
		Bool("CacheEnabled", cfg.CacheEnabled).
		Int("ResponseCacheSize", cfg.ResponseCacheSize).
		Dur("ResponseCacheTTL", cfg.ResponseCacheTTL).
		Msg("Layer configuration loaded")

	return cfg
}

// Validate checks the field constraints and that the URL template only uses
// the bbox placeholders.
func (c *LayerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid layer config: %w", err)
	}

	for _, key := range models.TemplateKeys(c.URL) {
		if !queryKeys[key] {
			return fmt.Errorf("invalid layer config: unknown URL placeholder {%s}", key)
		}
	}

	return nil
}

// ResponseCacheEnabled reports whether fetched responses should be cached
func (c *LayerConfig) ResponseCacheEnabled() bool {
	return c.ResponseCacheSize > 0 && c.ResponseCacheTTL > 0
}
