// README: Zone lookup service: GEO index first, reverse-geocode fallback.
package zones

import (
	"context"
	"errors"
	"fmt"

	"payguard/internal/types"
)

var ErrNotFound = errors.New("zone not found")

// nearestFinder and boroughResolver are the two lookup backends; the
// concrete Store and Geocoder satisfy them.
type nearestFinder interface {
	Nearest(ctx context.Context, p types.Point, radiusKm float64) (Zone, bool, error)
}

type boroughResolver interface {
	ReverseBorough(ctx context.Context, p types.Point) (string, error)
}

type Service struct {
	store    nearestFinder
	geocoder boroughResolver
	radiusKm float64
}

// NewService builds the lookup. geocoder may be nil when no Maps API key is
// configured; lookups then rely on the GEO index alone.
func NewService(store nearestFinder, geocoder boroughResolver, radiusKm float64) *Service {
	return &Service{store: store, geocoder: geocoder, radiusKm: radiusKm}
}

// Lookup resolves a coordinate to its zone. Misses in the centroid index
// fall back to reverse geocoding, which yields a borough-only zone.
func (s *Service) Lookup(ctx context.Context, p types.Point) (Zone, error) {
	z, ok, err := s.store.Nearest(ctx, p, s.radiusKm)
	if err != nil {
		return Zone{}, err
	}
	if ok {
		return z, nil
	}
	if s.geocoder == nil {
		return Zone{}, ErrNotFound
	}
	borough, err := s.geocoder.ReverseBorough(ctx, p)
	if err != nil {
		return Zone{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return Zone{Borough: borough}, nil
}
