package layer

import (
	"sync"

	"github.com/bbernstein/layerjson/internal/models"
)

// Group is the collection markers are displayed through. A map library's
// layer group or a cluster group can be adapted to it.
type Group interface {
	AddLayer(marker *models.Marker)
	RemoveLayer(marker *models.Marker)
	ClearLayers()
	Layers() []*models.Marker
	Len() int
}

// FeatureGroup is the in-memory Group used when no target layer is given.
// Markers keep insertion order and are de-duplicated by identity.
type FeatureGroup struct {
	markers []*models.Marker
	index   map[*models.Marker]int
	mu      sync.RWMutex
}

func NewFeatureGroup() *FeatureGroup {
	return &FeatureGroup{
		index: make(map[*models.Marker]int),
	}
}

func (g *FeatureGroup) AddLayer(marker *models.Marker) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.index[marker]; ok {
		return
	}
	g.index[marker] = len(g.markers)
	g.markers = append(g.markers, marker)
}

func (g *FeatureGroup) RemoveLayer(marker *models.Marker) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, ok := g.index[marker]
	if !ok {
		return
	}
	g.markers = append(g.markers[:i], g.markers[i+1:]...)
	delete(g.index, marker)
	for j := i; j < len(g.markers); j++ {
		g.index[g.markers[j]] = j
	}
}

func (g *FeatureGroup) ClearLayers() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.markers = nil
	g.index = make(map[*models.Marker]int)
}

// Layers returns a snapshot of the displayed markers.
func (g *FeatureGroup) Layers() []*models.Marker {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*models.Marker, len(g.markers))
	copy(out, g.markers)
	return out
}

func (g *FeatureGroup) Has(marker *models.Marker) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.index[marker]
	return ok
}

func (g *FeatureGroup) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.markers)
}
