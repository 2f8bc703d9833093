// README: Reverse-geocode fallback for borough resolution via the Google Maps API.
package zones

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"payguard/internal/types"
)

type Geocoder struct {
	client *maps.Client
}

func NewGeocoder(apiKey string) (*Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Geocoder{client: client}, nil
}

// ReverseBorough resolves a coordinate to a borough name. NYC boroughs come
// back as sublocality_level_1 components; outside the city the county name
// is the best available stand-in.
func (g *Geocoder) ReverseBorough(ctx context.Context, p types.Point) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	for _, r := range results {
		for _, comp := range r.AddressComponents {
			for _, t := range comp.Types {
				if t == "sublocality_level_1" || t == "administrative_area_level_2" {
					return comp.LongName, nil
				}
			}
		}
	}
	return "", fmt.Errorf("no borough component at %.5f,%.5f", p.Lat, p.Lng)
}
