package handlers

import (
	"context"
	"strconv"

	"github.com/breedermaps/server/internal/models"
	"github.com/breedermaps/server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// BreedAutocompleter ranks breed name suggestions.
type BreedAutocompleter interface {
	Search(ctx context.Context, term string, limit int) ([]services.BreedInfo, error)
}

// BreedLister lists the breed catalog.
type BreedLister interface {
	List(ctx context.Context) ([]models.Breed, error)
}

type BreedsHandler struct {
	autocomplete BreedAutocompleter
	catalog      BreedLister
}

func NewBreedsHandler(autocomplete BreedAutocompleter, catalog BreedLister) *BreedsHandler {
	return &BreedsHandler{autocomplete: autocomplete, catalog: catalog}
}

func SetupBreedRoutes(router fiber.Router, autocomplete BreedAutocompleter, catalog BreedLister) {
	h := NewBreedsHandler(autocomplete, catalog)

	router.Get("/", h.List)
	router.Get("/autocomplete", h.Autocomplete)
}

// List godoc
// @Summary List all breeds
// @Tags breeds
// @Accept json
// @Produce json
// @Success 200 {array} models.Breed
// @Router /breeds [get]
func (h *BreedsHandler) List(c *fiber.Ctx) error {
	breeds, err := h.catalog.List(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(breeds)
}

// Autocomplete godoc
// @Summary Autocomplete breed names
// @Tags breeds
// @Accept json
// @Produce json
// @Param search_term query string true "Search term (min 2 characters)"
// @Param limit query int false "Maximum suggestions (default 10)"
// @Success 200 {array} services.BreedInfo
// @Failure 400 {object} ErrorResponse
// @Router /breeds/autocomplete [get]
func (h *BreedsHandler) Autocomplete(c *fiber.Ctx) error {
	term := c.Query("search_term")
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	matches, err := h.autocomplete.Search(c.UserContext(), term, limit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(matches)
}
