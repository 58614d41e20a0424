package maps

import (
	"context"
	"errors"
)

// ErrNoResults is returned when a provider answers but finds nothing for the
// address.
var ErrNoResults = errors.New("maps: no geocoding results")

// Geocoder resolves a free-text address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
	Name() string
}

type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

// First returns the best match.
func (r *GeocodeResponse) First() (GeocodeResult, error) {
	if r == nil || len(r.Results) == 0 {
		return GeocodeResult{}, ErrNoResults
	}
	return r.Results[0], nil
}

type GeocodeResult struct {
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"formatted_address"`
	Coordinates Location `json:"geometry"`
	Types       []string `json:"types"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
