package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/breedermaps/server/internal/database"
	"github.com/breedermaps/server/internal/models"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeocodeCacheStore is the key/value store behind the geocoding service.
// A read of an expired entry behaves as a miss and drops the entry.
// Implementations are safe for concurrent use.
type GeocodeCacheStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type memoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryGeocodeCache is an in-process GeocodeCacheStore with lazy
// expiry-based eviction.
type MemoryGeocodeCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
	clock   clockwork.Clock
}

// NewMemoryGeocodeCache creates an in-memory cache using the real clock
func NewMemoryGeocodeCache() *MemoryGeocodeCache {
	return NewMemoryGeocodeCacheWithClock(clockwork.NewRealClock())
}

// NewMemoryGeocodeCacheWithClock creates an in-memory cache with an
// injected clock
func NewMemoryGeocodeCacheWithClock(clock clockwork.Clock) *MemoryGeocodeCache {
	return &MemoryGeocodeCache{
		entries: make(map[string]memoryCacheEntry),
		clock:   clock,
	}
}

func (c *MemoryGeocodeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryGeocodeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryCacheEntry{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
	return nil
}

func (c *MemoryGeocodeCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// DBGeocodeCache persists entries in the geocode_cache table so cached
// lookups survive restarts and are shared across replicas.
type DBGeocodeCache struct {
	db    *database.DB
	clock clockwork.Clock
}

// NewDBGeocodeCache creates a Postgres-backed cache store
func NewDBGeocodeCache(db *database.DB) *DBGeocodeCache {
	return &DBGeocodeCache{db: db, clock: clockwork.NewRealClock()}
}

func (c *DBGeocodeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.GeocodeCache
	err := c.db.WithContext(ctx).Where("cache_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if !c.clock.Now().Before(entry.ExpiresAt) {
		// Expired entries are dropped on read
		c.db.WithContext(ctx).Delete(&models.GeocodeCache{}, entry.ID)
		return nil, false, nil
	}
	return []byte(entry.Value), true, nil
}

func (c *DBGeocodeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := models.GeocodeCache{
		CacheKey:  key,
		Value:     string(value),
		ExpiresAt: c.clock.Now().Add(ttl),
	}
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&entry).Error
}

func (c *DBGeocodeCache) Invalidate(ctx context.Context, key string) error {
	return c.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&models.GeocodeCache{}).Error
}
