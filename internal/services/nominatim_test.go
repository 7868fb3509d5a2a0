package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNominatimForward(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "breedermaps-test/1.0" {
			t.Errorf("Expected identifying User-Agent, got %q", ua)
		}
		q := r.URL.Query()
		if q.Get("postalcode") != "10001" || q.Get("country") != "US" || q.Get("format") != "json" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"40.7506","lon":"-73.9971","display_name":"New York"}]`))
	}))
	defer server.Close()

	client := NewNominatimClient("breedermaps-test/1.0", WithBaseURL(server.URL))

	coords, err := client.Forward(context.Background(), "10001")
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if coords.Latitude != 40.7506 || coords.Longitude != -73.9971 {
		t.Errorf("Unexpected coordinates: %+v", coords)
	}
}

func TestNominatimForwardEmptyResultIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewNominatimClient("breedermaps-test/1.0", WithBaseURL(server.URL))

	_, err := client.Forward(context.Background(), "99999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestNominatimForwardServerErrorIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewNominatimClient("breedermaps-test/1.0", WithBaseURL(server.URL))

	_, err := client.Forward(context.Background(), "10001")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if providerErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", providerErr.StatusCode)
	}
}

func TestNominatimReverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") == "" || q.Get("lon") == "" {
			t.Errorf("Missing coordinates in query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":{"postcode":"10001","town":"Chelsea","state":"New York","country":"United States"}}`))
	}))
	defer server.Close()

	client := NewNominatimClient("breedermaps-test/1.0", WithBaseURL(server.URL))

	addr, err := client.Reverse(context.Background(), 40.7506, -73.9971)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if addr.ZipCode != "10001" {
		t.Errorf("Unexpected zip: %q", addr.ZipCode)
	}
	// town fills in when city is absent
	if addr.City != "Chelsea" {
		t.Errorf("Unexpected city: %q", addr.City)
	}
	if addr.State != "New York" || addr.Country != "United States" {
		t.Errorf("Unexpected address: %+v", addr)
	}
}

func TestNominatimReverseUnableToGeocodeIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	client := NewNominatimClient("breedermaps-test/1.0", WithBaseURL(server.URL))

	_, err := client.Reverse(context.Background(), 0, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestNominatimNetworkErrorIsProviderError(t *testing.T) {
	client := NewNominatimClient("breedermaps-test/1.0", WithBaseURL("http://127.0.0.1:1"))

	_, err := client.Forward(context.Background(), "10001")
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if providerErr.StatusCode != 0 {
		t.Errorf("Transport failures carry no status, got %d", providerErr.StatusCode)
	}
}
