package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBreedCatalog struct {
	breeds []BreedInfo
	err    error
}

func (c *fakeBreedCatalog) MatchBreeds(_ context.Context, term string) ([]BreedInfo, error) {
	if c.err != nil {
		return nil, c.err
	}

	lower := strings.ToLower(term)
	var matches []BreedInfo
	for _, b := range c.breeds {
		if strings.Contains(strings.ToLower(b.Name), lower) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func TestAutocompleteGold(t *testing.T) {
	catalog := &fakeBreedCatalog{breeds: []BreedInfo{
		{BreedID: 1, Name: "Golden Retriever", PetCount: 12},
		{BreedID: 2, Name: "Golden Doodle", PetCount: 4},
		{BreedID: 3, Name: "Beagle", PetCount: 7},
	}}
	svc := NewBreedAutocompleteService(catalog)

	matches, err := svc.Search(context.Background(), "gold", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Golden Doodle", matches[0].Name)
	assert.Equal(t, "Golden Retriever", matches[1].Name)
}

func TestAutocompletePrefixBeforeSubstring(t *testing.T) {
	catalog := &fakeBreedCatalog{breeds: []BreedInfo{
		{BreedID: 1, Name: "Cocker Spaniel", PetCount: 3},
		{BreedID: 2, Name: "Terrier", PetCount: 9},
		{BreedID: 3, Name: "Boston Terrier", PetCount: 1},
	}}
	svc := NewBreedAutocompleteService(catalog)

	matches, err := svc.Search(context.Background(), "ter", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	// Prefix match outranks the substring match despite sorting after it
	assert.Equal(t, "Terrier", matches[0].Name)
	assert.Equal(t, "Boston Terrier", matches[1].Name)
}

func TestAutocompleteCaseInsensitiveRanking(t *testing.T) {
	catalog := &fakeBreedCatalog{breeds: []BreedInfo{
		{BreedID: 1, Name: "pug", PetCount: 2},
		{BreedID: 2, Name: "Puggle", PetCount: 1},
	}}
	svc := NewBreedAutocompleteService(catalog)

	matches, err := svc.Search(context.Background(), "PUG", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Puggle", matches[0].Name)
	assert.Equal(t, "pug", matches[1].Name)
}

func TestAutocompleteLimit(t *testing.T) {
	catalog := &fakeBreedCatalog{breeds: []BreedInfo{
		{BreedID: 1, Name: "Shepherd A"},
		{BreedID: 2, Name: "Shepherd B"},
		{BreedID: 3, Name: "Shepherd C"},
	}}
	svc := NewBreedAutocompleteService(catalog)

	matches, err := svc.Search(context.Background(), "shep", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestAutocompleteDefaultLimit(t *testing.T) {
	catalog := &fakeBreedCatalog{}
	for i := 0; i < 25; i++ {
		catalog.breeds = append(catalog.breeds, BreedInfo{
			BreedID: uint(i + 1),
			Name:    "Spaniel " + string(rune('A'+i)),
		})
	}
	svc := NewBreedAutocompleteService(catalog)

	matches, err := svc.Search(context.Background(), "span", 0)
	require.NoError(t, err)
	assert.Len(t, matches, DefaultAutocompleteLimit)
}

func TestAutocompleteShortTermRejected(t *testing.T) {
	svc := NewBreedAutocompleteService(&fakeBreedCatalog{})

	for _, term := range []string{"", "a", " a ", "  "} {
		_, err := svc.Search(context.Background(), term, 0)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "term %q", term)
		assert.Equal(t, "search_term", validationErr.Field)
	}
}

func TestAutocompleteNoMatchesIsNotAnError(t *testing.T) {
	catalog := &fakeBreedCatalog{breeds: []BreedInfo{
		{BreedID: 1, Name: "Beagle"},
	}}
	svc := NewBreedAutocompleteService(catalog)

	matches, err := svc.Search(context.Background(), "zzz", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestAutocompleteCatalogOutageIsUnavailable(t *testing.T) {
	catalog := &fakeBreedCatalog{err: errors.New("connection refused")}
	svc := NewBreedAutocompleteService(catalog)

	_, err := svc.Search(context.Background(), "gold", 0)
	var unavailableErr *UnavailableError
	require.ErrorAs(t, err, &unavailableErr)
	assert.Positive(t, unavailableErr.RetryAfter)
}
