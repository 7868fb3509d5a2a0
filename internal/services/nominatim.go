// Package services contains the breeder discovery core: geocoding with
// caching and rate limiting, radius search over breeding locations, and
// breed autocomplete.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultNominatimURL is the public Nominatim instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"

	// DefaultGeocodingTimeout is the per-call HTTP timeout.
	DefaultGeocodingTimeout = 5 * time.Second
)

// GeocodingProvider is the outbound geocoding dependency. Forward resolves
// a ZIP code to coordinates, Reverse resolves coordinates to an address.
// Both return ErrNotFound when the provider resolves nothing and
// *ProviderError on transport or upstream failures.
type GeocodingProvider interface {
	Forward(ctx context.Context, zipCode string) (Coordinates, error)
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}

// ProviderError represents a failed call to the geocoding provider,
// covering both transport errors (StatusCode 0) and non-2xx responses.
type ProviderError struct {
	StatusCode int
	Endpoint   string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("geocoding provider error: status %d (endpoint: %s)", e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("geocoding provider error: %v (endpoint: %s)", e.Err, e.Endpoint)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NominatimClient is a GeocodingProvider backed by Nominatim.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NominatimOption configures the NominatimClient.
type NominatimOption func(*NominatimClient)

// WithBaseURL sets a custom Nominatim instance.
func WithBaseURL(baseURL string) NominatimOption {
	return func(c *NominatimClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) NominatimOption {
	return func(c *NominatimClient) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) NominatimOption {
	return func(c *NominatimClient) {
		c.httpClient.Timeout = timeout
	}
}

// NewNominatimClient creates a Nominatim client. The userAgent identifies
// this deployment; Nominatim's usage policy blocks anonymous clients.
func NewNominatimClient(userAgent string, opts ...NominatimOption) *NominatimClient {
	c := &NominatimClient{
		baseURL:   DefaultNominatimURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: DefaultGeocodingTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type nominatimReverse struct {
	Error   string `json:"error"`
	Address struct {
		Postcode string `json:"postcode"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Country  string `json:"country"`
	} `json:"address"`
}

// Forward resolves a 5-digit US ZIP code to coordinates.
func (c *NominatimClient) Forward(ctx context.Context, zipCode string) (Coordinates, error) {
	params := url.Values{}
	params.Set("postalcode", zipCode)
	params.Set("country", "US")
	params.Set("format", "json")
	params.Set("limit", "1")

	var places []nominatimPlace
	if err := c.get(ctx, "/search", params, &places); err != nil {
		return Coordinates{}, err
	}

	if len(places) == 0 {
		return Coordinates{}, ErrNotFound
	}

	// Nominatim encodes coordinates as JSON strings
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Coordinates{}, &ProviderError{Endpoint: "/search", Err: fmt.Errorf("bad latitude %q: %w", places[0].Lat, err)}
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Coordinates{}, &ProviderError{Endpoint: "/search", Err: fmt.Errorf("bad longitude %q: %w", places[0].Lon, err)}
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

// Reverse resolves coordinates to an address.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")

	var result nominatimReverse
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return Address{}, err
	}

	// Nominatim reports "Unable to geocode" with a 200 status
	if result.Error != "" {
		return Address{}, ErrNotFound
	}

	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}
	if city == "" {
		city = result.Address.Village
	}

	return Address{
		ZipCode: result.Address.Postcode,
		City:    city,
		State:   result.Address.State,
		Country: result.Address.Country,
	}, nil
}

// get performs a GET request against the provider.
func (c *NominatimClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &ProviderError{Endpoint: path, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &ProviderError{StatusCode: resp.StatusCode, Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &ProviderError{Endpoint: path, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
