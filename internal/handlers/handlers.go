package handlers

import (
	"errors"
	"fmt"

	"rewear/internal/logger"
	"rewear/internal/middleware"
	"rewear/internal/models"
	"rewear/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Guards are the middleware routes are mounted behind.
type Guards struct {
	Auth   fiber.Handler // valid JWT required
	Strict fiber.Handler // strict rate limit tier
}

// Only chains authentication and a role check.
func (g Guards) Only(roles ...models.Role) []fiber.Handler {
	return []fiber.Handler{g.Auth, middleware.RequireRoles(roles...)}
}

func (g Guards) strict() fiber.Handler {
	if g.Strict == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return g.Strict
}

// bindJSON parses and validates the request body. When ok is false the error
// response has already been written and err must be returned as is.
func bindJSON(c *fiber.Ctx, v *validator.Validate, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		logger.FromCtx(c.UserContext()).Debug("error parsing request body", zap.Error(err))
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := v.Struct(dst); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, services.ErrCartItemExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrMFACodeInvalid),
		errors.Is(err, services.ErrMFACodeExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrMFAAttemptsExceeded):
		return fiber.StatusTooManyRequests
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrPaymentDeclined):
		return fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrCouponInvalid),
		errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// fail writes the error response for err. Unexpected errors are logged.
func fail(c *fiber.Ctx, message string, err error) error {
	status := statusFor(err)
	log := logger.FromCtx(c.UserContext())
	if status == fiber.StatusInternalServerError {
		log.Error(message, zap.String("path", c.Path()), zap.Error(err))
	} else {
		log.Debug(message, zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func identity(c *fiber.Ctx) services.Identity {
	who, _ := middleware.CurrentIdentity(c)
	return who
}
