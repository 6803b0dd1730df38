package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/services"
)

// respond writes the flag-first envelope shared by every endpoint.
func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"message": message,
		"error":   false,
		"success": true,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   true,
		"success": false,
	})
}

// StatusFor maps a domain error kind to its HTTP status. Conflicts are soft
// errors reported with 200 and error:true.
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindConflict:
		return fiber.StatusOK
	case services.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case services.KindValidation, services.KindNotFound, services.KindForbidden,
		services.KindInvalidCredentials, services.KindInvalidOTP, services.KindExpired,
		services.KindOTPNotVerified:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders service, fiber and unexpected errors in the response
// envelope. Server-side failures are logged with their cause.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *services.AppError
		if errors.As(err, &appErr) {
			if appErr.Kind.Internal() {
				logging.LogError(logger, "request failed", err)
			}
			return respondError(c, StatusFor(appErr.Kind), appErr.Message)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return respondError(c, fiberErr.Code, fiberErr.Message)
		}

		logging.LogError(logger, "unhandled error", err)
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
