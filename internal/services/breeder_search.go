package services

import (
	"context"
	"math"
	"sort"

	"github.com/breedermaps/server/internal/logger"
	"go.uber.org/zap"
)

const (
	// MinSearchRadiusMiles and MaxSearchRadiusMiles bound the radius input.
	MinSearchRadiusMiles = 1.0
	MaxSearchRadiusMiles = 100.0

	// DefaultMaxSearchResults caps the result list.
	DefaultMaxSearchResults = 1000
)

// SearchQuery is a validated breeder search request.
type SearchQuery struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles float64
	BreedID     *uint
}

// BreedInfo is one breed available at a location. PetCount is always > 0
// in search results.
type BreedInfo struct {
	BreedID  uint   `json:"breed_id"`
	Name     string `json:"name"`
	PetCount int    `json:"pet_count"`
}

// BreederSearchResult is one breeder location within the search radius.
type BreederSearchResult struct {
	LocationID      uint        `json:"location_id"`
	UserID          uint        `json:"user_id"`
	BreederName     string      `json:"breeder_name"`
	Latitude        float64     `json:"latitude"`
	Longitude       float64     `json:"longitude"`
	DistanceMiles   float64     `json:"distance_miles"`
	AvailableBreeds []BreedInfo `json:"available_breeds"`
	ThumbnailURL    *string     `json:"thumbnail_url,omitempty"`
	Description     *string     `json:"description,omitempty"`
	Rating          *float64    `json:"rating,omitempty"`
}

// BreederSearchService finds breeding locations around a point, ranked by
// distance and aggregated per location.
type BreederSearchService struct {
	store      GeoStore
	maxResults int
	log        *zap.SugaredLogger
}

// NewBreederSearchService creates a search service over a GeoStore
func NewBreederSearchService(store GeoStore) *BreederSearchService {
	return &BreederSearchService{
		store:      store,
		maxResults: DefaultMaxSearchResults,
		log:        logger.GetLogger("search"),
	}
}

// WithMaxResults overrides the result cap.
func (s *BreederSearchService) WithMaxResults(n int) *BreederSearchService {
	s.maxResults = n
	return s
}

// Search returns breeders within the radius, sorted by ascending distance
// with location ID as the tie-break. Each location appears once, with its
// available breeds aggregated from its pets.
func (s *BreederSearchService) Search(ctx context.Context, query SearchQuery) ([]BreederSearchResult, error) {
	if err := s.validate(query); err != nil {
		return nil, err
	}

	center := Coordinates{Latitude: query.Latitude, Longitude: query.Longitude}
	candidates, err := s.store.LocationsWithinRadius(ctx, center, query.RadiusMiles, query.BreedID)
	if err != nil {
		s.log.Errorw("geo store query failed", "error", err)
		return nil, &UnavailableError{Service: "geo store", RetryAfter: 30, Err: err}
	}
	if len(candidates) == 0 {
		return []BreederSearchResult{}, nil
	}

	locationIDs := make([]uint, 0, len(candidates))
	for _, c := range candidates {
		locationIDs = append(locationIDs, c.LocationID)
	}

	counts, err := s.store.BreedsAtLocations(ctx, locationIDs, query.BreedID)
	if err != nil {
		s.log.Errorw("breed aggregation failed", "error", err)
		return nil, &UnavailableError{Service: "geo store", RetryAfter: 30, Err: err}
	}

	breedsByLocation := make(map[uint][]BreedInfo, len(candidates))
	for _, c := range counts {
		if c.PetCount <= 0 {
			continue
		}
		breedsByLocation[c.LocationID] = append(breedsByLocation[c.LocationID], BreedInfo{
			BreedID:  c.BreedID,
			Name:     c.BreedName,
			PetCount: c.PetCount,
		})
	}

	results := make([]BreederSearchResult, 0, len(candidates))
	for _, c := range candidates {
		breeds := breedsByLocation[c.LocationID]
		if len(breeds) == 0 {
			continue
		}
		if query.BreedID != nil && !containsBreed(breeds, *query.BreedID) {
			continue
		}

		name := c.BreederName
		if name == "" {
			name = "Unnamed breeder"
		}

		results = append(results, BreederSearchResult{
			LocationID:      c.LocationID,
			UserID:          c.UserID,
			BreederName:     name,
			Latitude:        c.Latitude,
			Longitude:       c.Longitude,
			DistanceMiles:   c.DistanceMiles,
			AvailableBreeds: breeds,
			ThumbnailURL:    c.ThumbnailURL,
			Description:     c.Description,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceMiles != results[j].DistanceMiles {
			return results[i].DistanceMiles < results[j].DistanceMiles
		}
		return results[i].LocationID < results[j].LocationID
	})

	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	for i := range results {
		results[i].DistanceMiles = math.Round(results[i].DistanceMiles*10) / 10
	}

	return results, nil
}

func (s *BreederSearchService) validate(query SearchQuery) error {
	if err := validateLatitude(query.Latitude); err != nil {
		return err
	}
	if err := validateLongitude(query.Longitude); err != nil {
		return err
	}
	if query.RadiusMiles < MinSearchRadiusMiles || query.RadiusMiles > MaxSearchRadiusMiles {
		return &ValidationError{Field: "radius", Value: query.RadiusMiles, Constraint: "must be between 1 and 100 miles"}
	}
	return nil
}

func containsBreed(breeds []BreedInfo, breedID uint) bool {
	for _, b := range breeds {
		if b.BreedID == breedID {
			return true
		}
	}
	return false
}
