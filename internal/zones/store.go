// README: Zone store backed by Redis GEO: centroid index plus a metadata hash.
package zones

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"payguard/internal/types"
)

const (
	zoneGeoKey  = "zones:centroids"
	zoneMetaKey = "zones:meta"
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// LoadZones (re)indexes the zone centroids. Called at startup from the zone
// seed the platform ships with.
func (s *Store) LoadZones(ctx context.Context, zs []Zone) error {
	pipe := s.redis.Pipeline()
	for _, z := range zs {
		pipe.GeoAdd(ctx, zoneGeoKey, &redis.GeoLocation{
			Name:      z.ID,
			Longitude: z.Centroid.Lng,
			Latitude:  z.Centroid.Lat,
		})
		pipe.HSet(ctx, zoneMetaKey, z.ID, z.Borough+"|"+z.Name)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Nearest returns the zone whose centroid is closest to p within radiusKm,
// reporting false when nothing is in range.
func (s *Store) Nearest(ctx context.Context, p types.Point, radiusKm float64) (Zone, bool, error) {
	results, err := s.redis.GeoSearch(ctx, zoneGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      1,
	}).Result()
	if err != nil {
		return Zone{}, false, fmt.Errorf("zone geosearch: %w", err)
	}
	if len(results) == 0 {
		return Zone{}, false, nil
	}

	id := results[0]
	meta, err := s.redis.HGet(ctx, zoneMetaKey, id).Result()
	if err == redis.Nil {
		return Zone{}, false, nil
	}
	if err != nil {
		return Zone{}, false, fmt.Errorf("zone meta for %s: %w", id, err)
	}
	borough, name, _ := strings.Cut(meta, "|")
	return Zone{ID: id, Name: name, Borough: borough}, true, nil
}
