package models

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// LatLng is a geographic point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewLatLng(lat, lng float64) LatLng {
	return LatLng{Lat: lat, Lng: lng}
}

// Point converts to an orb point, which is ordered lng/lat.
func (l LatLng) Point() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// DistanceTo returns the great circle distance in meters.
func (l LatLng) DistanceTo(other LatLng) float64 {
	return geo.DistanceHaversine(l.Point(), other.Point())
}

func (l LatLng) String() string {
	return fmt.Sprintf("LatLng(%g, %g)", l.Lat, l.Lng)
}

// Bounds is a rectangular geographic area.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

func NewBounds(southWest, northEast LatLng) Bounds {
	return Bounds{SouthWest: southWest, NorthEast: northEast}
}

func boundsFromOrb(b orb.Bound) Bounds {
	return Bounds{
		SouthWest: LatLng{Lat: b.Min.Lat(), Lng: b.Min.Lon()},
		NorthEast: LatLng{Lat: b.Max.Lat(), Lng: b.Max.Lon()},
	}
}

func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: b.SouthWest.Point(), Max: b.NorthEast.Point()}
}

// Contains reports whether other lies fully inside b. Edges are inclusive.
func (b Bounds) Contains(other Bounds) bool {
	bound := b.Bound()
	return bound.Contains(other.SouthWest.Point()) && bound.Contains(other.NorthEast.Point())
}

// ContainsPoint reports whether p lies inside b.
func (b Bounds) ContainsPoint(p LatLng) bool {
	return b.Bound().Contains(p.Point())
}

// Extend returns the smallest bounds covering both b and other.
func (b Bounds) Extend(other Bounds) Bounds {
	return boundsFromOrb(b.Bound().Union(other.Bound()))
}

func (b Bounds) Center() LatLng {
	c := b.Bound().Center()
	return LatLng{Lat: c.Lat(), Lng: c.Lon()}
}

// Viewport is a snapshot of what a map currently shows.
type Viewport struct {
	Center LatLng `json:"center"`
	Bounds Bounds `json:"bounds"`
}
