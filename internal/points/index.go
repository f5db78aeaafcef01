package points

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bbernstein/layerjson/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Index keeps the point set in memory and reloads it from its Source once it
// is older than the refresh TTL. Concurrent reloads are collapsed into one.
type Index struct {
	source Source
	ttl    time.Duration
	clock  clock

	mu       sync.RWMutex
	points   []models.Point
	loadedAt time.Time
	loaded   bool

	group singleflight.Group
}

var _ models.PointStore = (*Index)(nil)

func NewIndex(source Source, ttl time.Duration) *Index {
	return &Index{
		source: source,
		ttl:    ttl,
		clock:  systemClock{},
	}
}

// Within returns up to limit points inside q, in source order. A limit of 0
// means no limit.
func (i *Index) Within(ctx context.Context, q models.Query, limit int) ([]models.Point, error) {
	points, err := i.current(ctx)
	if err != nil {
		return nil, err
	}

	bounds := q.Bounds()
	result := []models.Point{}
	for _, p := range points {
		if !bounds.ContainsPoint(p.LatLng()) {
			continue
		}
		result = append(result, p)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Len returns the number of points currently held.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.points)
}

func (i *Index) current(ctx context.Context) ([]models.Point, error) {
	i.mu.RLock()
	points, loaded, fresh := i.points, i.loaded, i.clock.Now().Sub(i.loadedAt) < i.ttl
	i.mu.RUnlock()

	if loaded && fresh {
		return points, nil
	}

	// Shared by every waiting caller.
	shared := context.WithoutCancel(ctx)
	v, err, _ := i.group.Do("load", func() (interface{}, error) {
		return i.reload(shared)
	})
	if err != nil {
		if loaded {
			log.Warn().Err(err).Int("point_count", len(points)).Msg("Reloading points failed, serving previous set")
			return points, nil
		}
		return nil, err
	}
	return v.([]models.Point), nil
}

func (i *Index) reload(ctx context.Context) ([]models.Point, error) {
	raw, err := i.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading points: %w", err)
	}

	points := make([]models.Point, 0, len(raw))
	for _, p := range raw {
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Msg("Skipping invalid point")
			continue
		}
		points = append(points, p)
	}

	i.mu.Lock()
	i.points = points
	i.loadedAt = i.clock.Now()
	i.loaded = true
	i.mu.Unlock()

	log.Info().Int("point_count", len(points)).Msg("Point index refreshed")
	return points, nil
}
