package reconcile

import "github.com/bbernstein/layerjson/internal/models"

// FilterFunc decides whether a record gets a marker.
type FilterFunc func(record models.Record) bool

// MarkerBuilder creates the marker for a record at location.
type MarkerBuilder func(record models.Record, location models.LatLng) *models.Marker

// IconBuilder picks the icon for a record.
type IconBuilder func(record models.Record, title string) models.Icon

// PopupBuilder returns the popup content for a marker; ok=false means no popup.
type PopupBuilder func(record models.Record, marker *models.Marker) (content string, ok bool)

// MarkerHook runs on every newly built marker.
type MarkerHook func(record models.Record, marker *models.Marker)

func acceptAll(models.Record) bool { return true }

func defaultIcon(models.Record, string) models.Icon { return models.DefaultIcon }

func noPopup(models.Record, *models.Marker) (string, bool) { return "", false }

func noHook(models.Record, *models.Marker) {}

// DefaultMarkerBuilder builds a point marker titled from titleField, with the
// record copied into its options.
func DefaultMarkerBuilder(titleField string, buildIcon IconBuilder) MarkerBuilder {
	if buildIcon == nil {
		buildIcon = defaultIcon
	}
	return func(record models.Record, location models.LatLng) *models.Marker {
		title := record.Title(titleField)
		return models.NewMarker(location, title, buildIcon(record, title), record)
	}
}
