package services

import (
	"context"
	"math"

	"github.com/breedermaps/server/internal/database"
)

// BreederLocation is one radius-query candidate with its exact
// great-circle distance to the search center.
type BreederLocation struct {
	LocationID    uint    `json:"location_id"`
	UserID        uint    `json:"user_id"`
	BreederName   string  `json:"breeder_name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DistanceMiles float64 `json:"distance_miles"`
	ThumbnailURL  *string `json:"thumbnail_url,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// LocationBreedCount is a per-location breed tally.
type LocationBreedCount struct {
	LocationID uint   `json:"location_id"`
	BreedID    uint   `json:"breed_id"`
	BreedName  string `json:"breed_name"`
	PetCount   int    `json:"pet_count"`
}

// GeoStore is the spatial read model behind breeder search. Distances are
// great-circle miles, not planar approximations.
type GeoStore interface {
	LocationsWithinRadius(ctx context.Context, center Coordinates, radiusMiles float64, breedID *uint) ([]BreederLocation, error)
	BreedsAtLocations(ctx context.Context, locationIDs []uint, breedID *uint) ([]LocationBreedCount, error)
}

// earthRadiusMiles is the mean Earth radius used by the Haversine formula.
const earthRadiusMiles = 3958.8

// GormGeoStore is a GeoStore over the locations/users/pets tables in
// Postgres, computing Haversine distance in SQL.
type GormGeoStore struct {
	db *database.DB
}

// NewGormGeoStore creates a Postgres-backed GeoStore
func NewGormGeoStore(db *database.DB) *GormGeoStore {
	return &GormGeoStore{db: db}
}

const locationsWithinRadiusSQL = `
SELECT * FROM (
	SELECT
		l.id AS location_id,
		l.user_id AS user_id,
		COALESCE(u.breeder_name, '') AS breeder_name,
		l.lat AS latitude,
		l.lng AS longitude,
		2 * ? * asin(sqrt(
			power(sin(radians(l.lat - ?) / 2), 2) +
			cos(radians(?)) * cos(radians(l.lat)) * power(sin(radians(l.lng - ?) / 2), 2)
		)) AS distance_miles,
		u.profile_image_path AS thumbnail_url,
		l.name AS description
	FROM locations l
	JOIN users u ON u.id = l.user_id
	WHERE l.location_type = 'user'
	  AND l.is_published = true
	  AND l.deleted_at IS NULL
	  AND l.lat IS NOT NULL
	  AND l.lng IS NOT NULL
	  AND u.is_active = true
	  AND l.lat BETWEEN ? AND ?
	  AND l.lng BETWEEN ? AND ?
	  AND EXISTS (
		SELECT 1 FROM pets p
		WHERE p.location_id = l.id
		  AND p.is_deleted = false
		  AND p.deleted_at IS NULL
		  AND p.breed_id IS NOT NULL
		  AND (? = 0 OR p.breed_id = ?)
	  )
) candidates
WHERE distance_miles <= ?
ORDER BY distance_miles ASC, location_id ASC`

// boundingBox computes the lat/lng pre-filter ranges for a radius around
// center. Near the poles, or when the box would cross the antimeridian, the
// longitude range degenerates to the full globe; the exact Haversine
// predicate still bounds the result.
func boundingBox(center Coordinates, radiusMiles float64) (latMin, latMax, lngMin, lngMax float64) {
	latDelta := radiusMiles / 69.0
	lngDelta := 180.0
	if cosLat := math.Cos(center.Latitude * math.Pi / 180); cosLat > 0.01 {
		lngDelta = radiusMiles / (69.0 * cosLat)
	}

	lngMin = center.Longitude - lngDelta
	lngMax = center.Longitude + lngDelta
	if lngMin < -180 || lngMax > 180 {
		lngMin, lngMax = -180, 180
	}
	return center.Latitude - latDelta, center.Latitude + latDelta, lngMin, lngMax
}

func (s *GormGeoStore) LocationsWithinRadius(ctx context.Context, center Coordinates, radiusMiles float64, breedID *uint) ([]BreederLocation, error) {
	// Bounding-box pre-filter so the lat/lng indexes prune candidates
	// before the exact Haversine distance is evaluated
	latMin, latMax, lngMin, lngMax := boundingBox(center, radiusMiles)

	var filterBreed uint
	if breedID != nil {
		filterBreed = *breedID
	}

	var rows []BreederLocation
	err := s.db.WithContext(ctx).Raw(locationsWithinRadiusSQL,
		earthRadiusMiles,
		center.Latitude, center.Latitude, center.Longitude,
		latMin, latMax,
		lngMin, lngMax,
		filterBreed, filterBreed,
		radiusMiles,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

const breedsAtLocationsSQL = `
SELECT
	p.location_id AS location_id,
	b.id AS breed_id,
	b.name AS breed_name,
	COUNT(p.id) AS pet_count
FROM pets p
JOIN breeds b ON b.id = p.breed_id
WHERE p.location_id IN ?
  AND p.is_deleted = false
  AND p.deleted_at IS NULL
  AND (? = 0 OR p.breed_id = ?)
GROUP BY p.location_id, b.id, b.name
ORDER BY p.location_id, b.id`

func (s *GormGeoStore) BreedsAtLocations(ctx context.Context, locationIDs []uint, breedID *uint) ([]LocationBreedCount, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}

	var filterBreed uint
	if breedID != nil {
		filterBreed = *breedID
	}

	var rows []LocationBreedCount
	err := s.db.WithContext(ctx).Raw(breedsAtLocationsSQL,
		locationIDs, filterBreed, filterBreed,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
