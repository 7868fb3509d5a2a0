package services

import (
	"fmt"
	"regexp"
)

// Coordinates is a WGS84 point
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is a reverse-geocoding result. Fields the provider could not
// resolve stay empty.
type Address struct {
	ZipCode string `json:"zip_code,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

var zipCodeRegex = regexp.MustCompile(`^\d{5}$`)

// ZipCacheKey builds the cache key for a forward lookup
func ZipCacheKey(zip string) string {
	return "zip:" + zip
}

// ReverseCacheKey builds the cache key for a reverse lookup. Coordinates are
// rounded to 4 decimal places (~11m) so near-duplicate queries share an entry.
func ReverseCacheKey(lat, lon float64) string {
	return fmt.Sprintf("rev:%.4f:%.4f", lat, lon)
}

func validateLatitude(lat float64) error {
	if lat < -90 || lat > 90 {
		return &ValidationError{Field: "latitude", Value: lat, Constraint: "must be between -90 and 90"}
	}
	return nil
}

func validateLongitude(lon float64) error {
	if lon < -180 || lon > 180 {
		return &ValidationError{Field: "longitude", Value: lon, Constraint: "must be between -180 and 180"}
	}
	return nil
}
