package models

import "strconv"

// Query is the bbox sent to the data source, derived from the viewport bounds
// on every update.
type Query struct {
	MinLat    float64
	MaxLat    float64
	MinLon    float64
	MaxLon    float64
	Precision int
}

func NewQuery(bounds Bounds, precision int) Query {
	return Query{
		MinLat:    bounds.SouthWest.Lat,
		MaxLat:    bounds.NorthEast.Lat,
		MinLon:    bounds.SouthWest.Lng,
		MaxLon:    bounds.NorthEast.Lng,
		Precision: precision,
	}
}

// Values returns the template values, formatted with a fixed number of
// decimals.
func (q Query) Values() map[string]string {
	return map[string]string{
		"minlat": q.format(q.MinLat),
		"maxlat": q.format(q.MaxLat),
		"minlon": q.format(q.MinLon),
		"maxlon": q.format(q.MaxLon),
	}
}

func (q Query) Bounds() Bounds {
	return NewBounds(NewLatLng(q.MinLat, q.MinLon), NewLatLng(q.MaxLat, q.MaxLon))
}

func (q Query) format(v float64) string {
	return strconv.FormatFloat(v, 'f', q.Precision, 64)
}
