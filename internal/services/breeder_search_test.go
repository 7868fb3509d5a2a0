package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeoStore struct {
	locations []BreederLocation
	breeds    []LocationBreedCount
	err       error
}

func (s *fakeGeoStore) LocationsWithinRadius(_ context.Context, _ Coordinates, radiusMiles float64, breedID *uint) ([]BreederLocation, error) {
	if s.err != nil {
		return nil, s.err
	}

	var rows []BreederLocation
	for _, loc := range s.locations {
		if loc.DistanceMiles > radiusMiles {
			continue
		}
		if breedID != nil && !s.locationHasBreed(loc.LocationID, *breedID) {
			continue
		}
		rows = append(rows, loc)
	}
	return rows, nil
}

func (s *fakeGeoStore) BreedsAtLocations(_ context.Context, locationIDs []uint, breedID *uint) ([]LocationBreedCount, error) {
	if s.err != nil {
		return nil, s.err
	}

	ids := make(map[uint]bool, len(locationIDs))
	for _, id := range locationIDs {
		ids[id] = true
	}

	var rows []LocationBreedCount
	for _, b := range s.breeds {
		if !ids[b.LocationID] {
			continue
		}
		if breedID != nil && b.BreedID != *breedID {
			continue
		}
		rows = append(rows, b)
	}
	return rows, nil
}

func (s *fakeGeoStore) locationHasBreed(locationID, breedID uint) bool {
	for _, b := range s.breeds {
		if b.LocationID == locationID && b.BreedID == breedID && b.PetCount > 0 {
			return true
		}
	}
	return false
}

func uintPtr(v uint) *uint { return &v }

func TestSearchScenarioNearbyGoldenRetrievers(t *testing.T) {
	store := &fakeGeoStore{
		locations: []BreederLocation{
			{LocationID: 1, UserID: 11, BreederName: "Happy Paws Kennel", Latitude: 40.78, Longitude: -74.02, DistanceMiles: 5.2},
			{LocationID: 2, UserID: 12, BreederName: "Far Meadow Farm", Latitude: 41.5, Longitude: -74.8, DistanceMiles: 60.0},
		},
		breeds: []LocationBreedCount{
			{LocationID: 1, BreedID: 123, BreedName: "Golden Retriever", PetCount: 3},
			{LocationID: 2, BreedID: 123, BreedName: "Golden Retriever", PetCount: 2},
		},
	}
	svc := NewBreederSearchService(store)

	results, err := svc.Search(context.Background(), SearchQuery{
		Latitude:    40.7128,
		Longitude:   -74.0060,
		RadiusMiles: 40,
		BreedID:     uintPtr(123),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, uint(1), got.LocationID)
	assert.Equal(t, 5.2, got.DistanceMiles)
	assert.Equal(t, []BreedInfo{{BreedID: 123, Name: "Golden Retriever", PetCount: 3}}, got.AvailableBreeds)
}

func TestSearchValidation(t *testing.T) {
	svc := NewBreederSearchService(&fakeGeoStore{})

	cases := []struct {
		name  string
		query SearchQuery
		field string
	}{
		{"radius too small", SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 0.5}, "radius"},
		{"radius too large", SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 150}, "radius"},
		{"latitude out of range", SearchQuery{Latitude: 91, Longitude: -74, RadiusMiles: 10}, "latitude"},
		{"longitude out of range", SearchQuery{Latitude: 40, Longitude: -200, RadiusMiles: 10}, "longitude"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tc.query)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
			assert.NotEmpty(t, validationErr.Constraint)
		})
	}
}

func TestSearchSortsByDistanceWithLocationTieBreak(t *testing.T) {
	store := &fakeGeoStore{
		locations: []BreederLocation{
			{LocationID: 7, UserID: 1, DistanceMiles: 10.0},
			{LocationID: 3, UserID: 2, DistanceMiles: 10.0},
			{LocationID: 5, UserID: 3, DistanceMiles: 2.5},
		},
		breeds: []LocationBreedCount{
			{LocationID: 7, BreedID: 1, BreedName: "Beagle", PetCount: 1},
			{LocationID: 3, BreedID: 1, BreedName: "Beagle", PetCount: 2},
			{LocationID: 5, BreedID: 2, BreedName: "Poodle", PetCount: 4},
		},
	}
	svc := NewBreederSearchService(store)

	results, err := svc.Search(context.Background(), SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 50})
	require.NoError(t, err)
	require.Len(t, results, 3)

	var ids []uint
	for _, r := range results {
		ids = append(ids, r.LocationID)
	}
	assert.Equal(t, []uint{5, 3, 7}, ids)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].DistanceMiles, results[i].DistanceMiles)
	}
}

func TestSearchRoundsDistanceToOneDecimal(t *testing.T) {
	store := &fakeGeoStore{
		locations: []BreederLocation{
			{LocationID: 1, DistanceMiles: 5.24},
			{LocationID: 2, DistanceMiles: 5.25},
		},
		breeds: []LocationBreedCount{
			{LocationID: 1, BreedID: 1, BreedName: "Beagle", PetCount: 1},
			{LocationID: 2, BreedID: 1, BreedName: "Beagle", PetCount: 1},
		},
	}
	svc := NewBreederSearchService(store)

	results, err := svc.Search(context.Background(), SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 5.2, results[0].DistanceMiles)
	assert.Equal(t, 5.3, results[1].DistanceMiles)
}

func TestSearchCapsResults(t *testing.T) {
	store := &fakeGeoStore{}
	for i := uint(1); i <= 5; i++ {
		store.locations = append(store.locations, BreederLocation{LocationID: i, DistanceMiles: float64(i)})
		store.breeds = append(store.breeds, LocationBreedCount{LocationID: i, BreedID: 1, BreedName: "Beagle", PetCount: 1})
	}
	svc := NewBreederSearchService(store).WithMaxResults(2)

	results, err := svc.Search(context.Background(), SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 50})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint(1), results[0].LocationID)
	assert.Equal(t, uint(2), results[1].LocationID)
}

func TestSearchExcludesZeroCountBreeds(t *testing.T) {
	store := &fakeGeoStore{
		locations: []BreederLocation{
			{LocationID: 1, DistanceMiles: 3.0},
		},
		breeds: []LocationBreedCount{
			{LocationID: 1, BreedID: 1, BreedName: "Beagle", PetCount: 2},
			{LocationID: 1, BreedID: 2, BreedName: "Poodle", PetCount: 0},
		},
	}
	svc := NewBreederSearchService(store)

	results, err := svc.Search(context.Background(), SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)

	for _, b := range results[0].AvailableBreeds {
		assert.Greater(t, b.PetCount, 0)
	}
	assert.Len(t, results[0].AvailableBreeds, 1)
}

func TestSearchSkipsLocationsWithoutBreeds(t *testing.T) {
	store := &fakeGeoStore{
		locations: []BreederLocation{
			{LocationID: 1, DistanceMiles: 3.0},
			{LocationID: 2, DistanceMiles: 4.0},
		},
		breeds: []LocationBreedCount{
			{LocationID: 2, BreedID: 1, BreedName: "Beagle", PetCount: 1},
		},
	}
	svc := NewBreederSearchService(store)

	results, err := svc.Search(context.Background(), SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint(2), results[0].LocationID)
}

func TestSearchBreedFilterAppearsInEveryResult(t *testing.T) {
	store := &fakeGeoStore{
		locations: []BreederLocation{
			{LocationID: 1, DistanceMiles: 3.0},
			{LocationID: 2, DistanceMiles: 4.0},
		},
		breeds: []LocationBreedCount{
			{LocationID: 1, BreedID: 123, BreedName: "Golden Retriever", PetCount: 1},
			{LocationID: 2, BreedID: 456, BreedName: "Beagle", PetCount: 5},
		},
	}
	svc := NewBreederSearchService(store)

	results, err := svc.Search(context.Background(), SearchQuery{
		Latitude: 40, Longitude: -74, RadiusMiles: 10,
		BreedID: uintPtr(123),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	for _, r := range results {
		found := false
		for _, b := range r.AvailableBreeds {
			if b.BreedID == 123 {
				found = true
			}
		}
		assert.True(t, found, "every result must contain the filtered breed")
	}
}

func TestSearchStoreOutageIsUnavailable(t *testing.T) {
	store := &fakeGeoStore{err: errors.New("connection refused")}
	svc := NewBreederSearchService(store)

	_, err := svc.Search(context.Background(), SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 10})
	var unavailableErr *UnavailableError
	require.ErrorAs(t, err, &unavailableErr)
	assert.Positive(t, unavailableErr.RetryAfter)
}

func TestSearchEmptyRadiusReturnsEmptyList(t *testing.T) {
	store := &fakeGeoStore{
		locations: []BreederLocation{
			{LocationID: 1, DistanceMiles: 90.0},
		},
		breeds: []LocationBreedCount{
			{LocationID: 1, BreedID: 1, BreedName: "Beagle", PetCount: 1},
		},
	}
	svc := NewBreederSearchService(store)

	results, err := svc.Search(context.Background(), SearchQuery{Latitude: 40, Longitude: -74, RadiusMiles: 5})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
