package viewport

import (
	"sync"

	"github.com/bbernstein/layerjson/internal/models"
)

// Monitor decides whether a viewport move warrants a refetch. It remembers
// the center of the last accepted move and the union of all bounds fetched
// so far.
type Monitor struct {
	minShift float64

	mu     sync.Mutex
	center models.LatLng
	bounds models.Bounds
}

func NewMonitor(minShiftMeters float64, center models.LatLng, bounds models.Bounds) *Monitor {
	return &Monitor{
		minShift: minShiftMeters,
		center:   center,
		bounds:   bounds,
	}
}

// ShouldUpdate reports whether the move to center/bounds exposes new area.
// A move shorter than the minimum shift is ignored entirely. Otherwise the
// center is remembered, and an update is due only when bounds reach outside
// everything seen so far, in which case the seen area grows to include them.
func (m *Monitor) ShouldUpdate(center models.LatLng, bounds models.Bounds) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.center.DistanceTo(center) < m.minShift {
		return false
	}
	m.center = center

	if m.bounds.Contains(bounds) {
		return false
	}
	m.bounds = m.bounds.Extend(bounds)
	return true
}

func (m *Monitor) Center() models.LatLng {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center
}

func (m *Monitor) Bounds() models.Bounds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds
}
