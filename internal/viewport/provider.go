package viewport

import (
	"sync"

	"github.com/bbernstein/layerjson/internal/models"
)

// Provider is the map a layer is attached to.
type Provider interface {
	Center() models.LatLng
	Bounds() models.Bounds
	// OnMoveEnd registers fn to run after every completed move and returns
	// a function that removes it again.
	OnMoveEnd(fn func()) (unsubscribe func())
}

// Map is an in-memory Provider. Moves notify subscribers synchronously on
// the caller's goroutine.
type Map struct {
	mu       sync.RWMutex
	center   models.LatLng
	bounds   models.Bounds
	nextID   int
	handlers map[int]func()
}

func NewMap(bounds models.Bounds) *Map {
	return &Map{
		center:   bounds.Center(),
		bounds:   bounds,
		handlers: make(map[int]func()),
	}
}

func (m *Map) Center() models.LatLng {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.center
}

func (m *Map) Bounds() models.Bounds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bounds
}

func (m *Map) OnMoveEnd(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.handlers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers, id)
	}
}

// SetView moves the map to bounds and fires the move end notification.
func (m *Map) SetView(bounds models.Bounds) {
	m.mu.Lock()
	m.bounds = bounds
	m.center = bounds.Center()
	handlers := make([]func(), 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// PanBy shifts the view by the given number of degrees.
func (m *Map) PanBy(dLat, dLng float64) {
	b := m.Bounds()
	m.SetView(models.NewBounds(
		models.NewLatLng(b.SouthWest.Lat+dLat, b.SouthWest.Lng+dLng),
		models.NewLatLng(b.NorthEast.Lat+dLat, b.NorthEast.Lng+dLng),
	))
}

// Subscribers returns how many move handlers are registered.
func (m *Map) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}
