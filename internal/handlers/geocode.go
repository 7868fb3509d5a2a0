package handlers

import (
	"context"

	"github.com/breedermaps/server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Geocoder is the geocoding service consumed by the handler.
type Geocoder interface {
	GeocodeZip(ctx context.Context, zipCode string) (services.Coordinates, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (services.Address, error)
}

type GeocodeHandler struct {
	service Geocoder
}

func NewGeocodeHandler(service Geocoder) *GeocodeHandler {
	return &GeocodeHandler{service: service}
}

func SetupGeocodeRoutes(router fiber.Router, service Geocoder) {
	h := NewGeocodeHandler(service)

	router.Get("/zip", h.GeocodeZip)
	router.Get("/reverse", h.ReverseGeocode)
}

// GeocodeZip godoc
// @Summary Convert a US ZIP code to coordinates
// @Tags geocode
// @Accept json
// @Produce json
// @Param zip query string true "5-digit ZIP code"
// @Success 200 {object} services.Coordinates
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /geocode/zip [get]
func (h *GeocodeHandler) GeocodeZip(c *fiber.Ctx) error {
	zip := c.Query("zip")
	if zip == "" {
		return badRequest(c, &services.ValidationError{Field: "zip", Value: "", Constraint: "is required"})
	}

	coords, err := h.service.GeocodeZip(c.UserContext(), zip)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(coords)
}

// ReverseGeocode godoc
// @Summary Convert coordinates to an address
// @Tags geocode
// @Accept json
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} services.Address
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /geocode/reverse [get]
func (h *GeocodeHandler) ReverseGeocode(c *fiber.Ctx) error {
	lat, err := requiredFloatQuery(c, "lat")
	if err != nil {
		return badRequest(c, err)
	}
	lon, err := requiredFloatQuery(c, "lon")
	if err != nil {
		return badRequest(c, err)
	}

	addr, err := h.service.ReverseGeocode(c.UserContext(), lat, lon)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(addr)
}
