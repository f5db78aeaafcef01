package models

import (
	"context"
	"fmt"
)

// Point is a record served by the point service. Its JSON shape matches the
// loader's default location and title fields.
type Point struct {
	ID         string         `json:"id" dynamodbav:"id"`
	Title      string         `json:"title,omitempty" dynamodbav:"title"`
	Loc        [2]float64     `json:"loc" dynamodbav:"loc"`
	Category   *string        `json:"category,omitempty" dynamodbav:"category,omitempty"`
	Properties map[string]any `json:"properties,omitempty" dynamodbav:"properties,omitempty"`
}

func (p Point) LatLng() LatLng {
	return LatLng{Lat: p.Loc[0], Lng: p.Loc[1]}
}

// Validate checks that the point can be placed on a map
func (p *Point) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("point ID is required")
	}

	lat, lon := p.Loc[0], p.Loc[1]
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude for point %s: %v", p.ID, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude for point %s: %v", p.ID, lon)
	}

	return nil
}

// PointStore defines the interface for finding points inside a bbox
type PointStore interface {
	Within(ctx context.Context, query Query, limit int) ([]Point, error)
}
