package services

import (
	"context"
	"strings"

	"github.com/breedermaps/server/internal/database"
	"github.com/breedermaps/server/internal/models"
)

// GormBreedCatalog is a BreedCatalog over the breeds and pets tables.
type GormBreedCatalog struct {
	db *database.DB
}

// NewGormBreedCatalog creates a Postgres-backed breed catalog
func NewGormBreedCatalog(db *database.DB) *GormBreedCatalog {
	return &GormBreedCatalog{db: db}
}

const matchBreedsSQL = `
SELECT
	b.id AS breed_id,
	b.name AS name,
	COUNT(p.id) AS pet_count
FROM breeds b
LEFT JOIN pets p ON p.breed_id = b.id AND p.is_deleted = false AND p.deleted_at IS NULL
WHERE b.deleted_at IS NULL
  AND b.name ILIKE ?
GROUP BY b.id, b.name
ORDER BY b.name ASC`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern escapes ILIKE metacharacters so the term matches
// literally rather than as a pattern.
func escapeLikePattern(term string) string {
	return likeEscaper.Replace(term)
}

func (c *GormBreedCatalog) MatchBreeds(ctx context.Context, term string) ([]BreedInfo, error) {
	var matches []BreedInfo
	err := c.db.WithContext(ctx).Raw(matchBreedsSQL, "%"+escapeLikePattern(term)+"%").Scan(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// List retrieves all breeds ordered by name
func (c *GormBreedCatalog) List(ctx context.Context) ([]models.Breed, error) {
	var breeds []models.Breed
	err := c.db.WithContext(ctx).Order("name ASC").Find(&breeds).Error
	if err != nil {
		return nil, err
	}
	return breeds, nil
}
