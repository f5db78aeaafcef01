package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one point as received from the data source. Only the location
// and title fields have a meaning to the loader; everything else is passed
// through to the marker.
type Record map[string]any

// Records keeps the order in which the source returned them.
type Records []Record

// LocationError is returned when a record has no usable location.
type LocationError struct {
	Field  string
	Reason string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("invalid location field %q: %s", e.Field, e.Reason)
}

// Location reads the two element [lat, lon] value stored under field.
func (r Record) Location(field string) (LatLng, error) {
	raw, ok := r[field]
	if !ok || raw == nil {
		return LatLng{}, &LocationError{Field: field, Reason: "missing"}
	}

	pair, ok := raw.([]any)
	if !ok || len(pair) < 2 {
		return LatLng{}, &LocationError{Field: field, Reason: "expected a two element array"}
	}

	lat, err := toFloat(pair[0])
	if err != nil {
		return LatLng{}, &LocationError{Field: field, Reason: "latitude: " + err.Error()}
	}
	lon, err := toFloat(pair[1])
	if err != nil {
		return LatLng{}, &LocationError{Field: field, Reason: "longitude: " + err.Error()}
	}

	return LatLng{Lat: lat, Lng: lon}, nil
}

// Title returns the title field as a string, or "" when absent.
func (r Record) Title(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// DecodeRecords parses a response body that is either an array of records or
// an object whose values are records. Object key order is kept. Entries that
// are not objects are skipped.
func DecodeRecords(data []byte) (Records, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading first token: %w", err)
	}

	records := Records{}
	switch tok {
	case nil:
		return records, nil
	case json.Delim('['):
		for dec.More() {
			if err := appendRecord(dec, &records); err != nil {
				return nil, err
			}
		}
	case json.Delim('{'):
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("reading key: %w", err)
			}
			if err := appendRecord(dec, &records); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unexpected top level value %v", tok)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading closing token: %w", err)
	}
	return records, nil
}

func appendRecord(dec *json.Decoder, records *Records) error {
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		*records = append(*records, Record(m))
	}
	return nil
}
