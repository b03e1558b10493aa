package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// ErrorHandler is the fiber failure boundary. Routing errors keep their status;
// anything else is logged and reported with the fixed unexpected-error message.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return utils.SendError(c, fiberErr.Code, fiberErr.Message)
		}

		logger.Error().
			Err(err).
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled request failure")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.UnexpectedErrorMessage)
	}
}
