package cache

import "strconv"

// GeoKey derives the marker cache key for a location. The values are echoed
// exactly as received, so coordinates that differ only by float noise get
// different keys.
func GeoKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "_" + strconv.FormatFloat(lon, 'f', -1, 64)
}
