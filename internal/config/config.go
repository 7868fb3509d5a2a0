package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string
	ServerHost string

	// Database
	DatabaseURL string

	// Geocoding (Nominatim)
	NominatimURL      string
	GeocodingUA       string
	GeocodingRate     float64 // provider calls per second
	GeocodingBurst    int
	GeocodingTimeout  time.Duration
	GeocodingCacheTTL time.Duration

	// Search
	SearchMaxResults int

	// SigNoz
	SigNozEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),
		ServerHost: getEnv("SERVER_HOST", "localhost:3000"),

		// Database - DATABASE_URL first, otherwise built from parts
		DatabaseURL: getDatabaseURL(),

		// Geocoding - Nominatim usage policy requires an identifying
		// User-Agent and caps anonymous usage at 1 req/s
		NominatimURL:      getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		GeocodingUA:       getEnv("GEOCODING_USER_AGENT", "breedermaps/1.0 (contact@breedermaps.com)"),
		GeocodingRate:     getEnvAsFloat("GEOCODING_RATE_LIMIT", 1.0),
		GeocodingBurst:    getEnvAsInt("GEOCODING_RATE_BURST", 1),
		GeocodingTimeout:  time.Duration(getEnvAsInt("GEOCODING_TIMEOUT_SECONDS", 5)) * time.Second,
		GeocodingCacheTTL: time.Duration(getEnvAsInt("GEOCODING_CACHE_TTL", 86400)) * time.Second,

		// Search
		SearchMaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 1000),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	// Individual env vars match the k8s secret key names
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "breedermaps")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
