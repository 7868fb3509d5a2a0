package handlers

import (
	"context"
	"strconv"

	"github.com/breedermaps/server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// BreederSearcher is the search service consumed by the handler.
type BreederSearcher interface {
	Search(ctx context.Context, query services.SearchQuery) ([]services.BreederSearchResult, error)
}

type SearchHandler struct {
	service BreederSearcher
}

func NewSearchHandler(service BreederSearcher) *SearchHandler {
	return &SearchHandler{service: service}
}

func SetupSearchRoutes(router fiber.Router, service BreederSearcher) {
	h := NewSearchHandler(service)

	router.Get("/breeders", h.SearchBreeders)
}

// SearchBreeders godoc
// @Summary Search breeders near a point
// @Tags search
// @Accept json
// @Produce json
// @Param latitude query number true "Search center latitude"
// @Param longitude query number true "Search center longitude"
// @Param radius query number true "Search radius in miles (1-100)"
// @Param breed_id query int false "Filter by breed"
// @Success 200 {array} services.BreederSearchResult
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /search/breeders [get]
func (h *SearchHandler) SearchBreeders(c *fiber.Ctx) error {
	latitude, err := requiredFloatQuery(c, "latitude")
	if err != nil {
		return badRequest(c, err)
	}
	longitude, err := requiredFloatQuery(c, "longitude")
	if err != nil {
		return badRequest(c, err)
	}
	radius, err := requiredFloatQuery(c, "radius")
	if err != nil {
		return badRequest(c, err)
	}

	query := services.SearchQuery{
		Latitude:    latitude,
		Longitude:   longitude,
		RadiusMiles: radius,
	}

	if raw := c.Query("breed_id"); raw != "" {
		breedID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return badRequest(c, &services.ValidationError{Field: "breed_id", Value: raw, Constraint: "must be a positive integer"})
		}
		id := uint(breedID)
		query.BreedID = &id
	}

	results, err := h.service.Search(c.UserContext(), query)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(results)
}

func requiredFloatQuery(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, &services.ValidationError{Field: name, Value: "", Constraint: "is required"}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &services.ValidationError{Field: name, Value: raw, Constraint: "must be a number"}
	}
	return value, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
}
