package services

import (
	"context"
	"sort"
	"strings"
)

// DefaultAutocompleteLimit caps autocomplete suggestions.
const DefaultAutocompleteLimit = 10

// BreedCatalog is read access to the breed list and per-breed pet counts.
type BreedCatalog interface {
	// MatchBreeds returns breeds whose name contains term,
	// case-insensitive, with their pet counts.
	MatchBreeds(ctx context.Context, term string) ([]BreedInfo, error)
}

// BreedAutocompleteService ranks breed name suggestions: prefix matches
// first, then substring matches, alphabetical within each rank.
type BreedAutocompleteService struct {
	catalog BreedCatalog
}

// NewBreedAutocompleteService creates an autocomplete service over a catalog
func NewBreedAutocompleteService(catalog BreedCatalog) *BreedAutocompleteService {
	return &BreedAutocompleteService{catalog: catalog}
}

// Search returns up to limit breed suggestions for term. The term must be
// at least 2 characters.
func (s *BreedAutocompleteService) Search(ctx context.Context, term string, limit int) ([]BreedInfo, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, &ValidationError{Field: "search_term", Value: term, Constraint: "must be at least 2 characters"}
	}
	if limit <= 0 {
		limit = DefaultAutocompleteLimit
	}

	matches, err := s.catalog.MatchBreeds(ctx, term)
	if err != nil {
		return nil, &UnavailableError{Service: "breed catalog", RetryAfter: 30, Err: err}
	}

	lower := strings.ToLower(term)
	sort.Slice(matches, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(matches[i].Name), lower)
		pj := strings.HasPrefix(strings.ToLower(matches[j].Name), lower)
		if pi != pj {
			return pi
		}
		return matches[i].Name < matches[j].Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
