package handlers

import (
	"context"
	"errors"

	"github.com/breedermaps/server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// ErrorHandler is the custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error: message,
	})
}

// serviceError maps a service-layer error onto an HTTP response
func serviceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: validationErr.Error(),
		})
	}

	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "not found",
		})
	}

	var rateLimitedErr *services.RateLimitedError
	if errors.As(err, &rateLimitedErr) {
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
			Error:      "rate limit exceeded, please try again later",
			RetryAfter: rateLimitedErr.RetryAfter,
		})
	}

	var unavailableErr *services.UnavailableError
	if errors.As(err, &unavailableErr) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:      unavailableErr.Service + " temporarily unavailable",
			RetryAfter: unavailableErr.RetryAfter,
		})
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
			Error: "request canceled",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Internal Server Error",
	})
}
