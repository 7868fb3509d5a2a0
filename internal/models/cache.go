package models

import (
	"time"
)

// GeocodeCache is a persisted geocoding cache entry. The key is the
// normalized lookup ("zip:10001", "rev:40.7128:-74.0060") and the value is
// the JSON-encoded result.
type GeocodeCache struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CacheKey  string    `gorm:"column:cache_key;size:500;not null;uniqueIndex" json:"cache_key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

func (GeocodeCache) TableName() string {
	return "geocode_cache"
}
