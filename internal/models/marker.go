package models

// Icon identifies the image a marker is drawn with.
type Icon struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

var DefaultIcon = Icon{Name: "default"}

type PopupOptions struct {
	MaxWidth  int    `json:"maxWidth,omitempty"`
	ClassName string `json:"className,omitempty"`
	AutoPan   bool   `json:"autoPan,omitempty"`
}

type Popup struct {
	Content string       `json:"content"`
	Options PopupOptions `json:"options"`
}

// Marker is the renderable created from one Record. The loader treats it as
// an opaque handle and compares markers by pointer identity.
type Marker struct {
	Location LatLng         `json:"location"`
	Title    string         `json:"title,omitempty"`
	Icon     Icon           `json:"icon"`
	Popup    *Popup         `json:"popup,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// NewMarker copies the record into the marker options so later changes to
// the record do not leak into the marker.
func NewMarker(location LatLng, title string, icon Icon, record Record) *Marker {
	opts := make(map[string]any, len(record))
	for k, v := range record {
		opts[k] = v
	}
	return &Marker{
		Location: location,
		Title:    title,
		Icon:     icon,
		Options:  opts,
	}
}

func (m *Marker) BindPopup(content string, opts PopupOptions) {
	m.Popup = &Popup{Content: content, Options: opts}
}
