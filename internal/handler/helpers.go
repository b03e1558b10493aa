package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func identity(c *fiber.Ctx) auth.Identity {
	return middleware.IdentityFrom(c)
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// respondError translates a service failure into the error envelope.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	status, message := classify(err)
	log := requestLogger(logger, c)
	switch {
	case status >= fiber.StatusInternalServerError:
		log.Error().Err(err).Str("action", action).Msg("request failed")
	case status == fiber.StatusBadRequest:
		log.Warn().Err(err).Str("action", action).Msg("request rejected")
	}
	return utils.SendError(c, status, message)
}

func classify(err error) (int, string) {
	var dataErr *service.DataAccessError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return fiber.StatusUnauthorized, middleware.MessageUnauthenticated
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, middleware.MessageForbidden
	case errors.Is(err, service.ErrAccountLocked):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrContestNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrEvaluationNotFound),
		errors.Is(err, service.ErrEvaluatorNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrContestantNotFound),
		errors.Is(err, service.ErrNoEntryAvailable),
		errors.Is(err, service.ErrVoteNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrDuplicateEvaluation),
		errors.Is(err, service.ErrDuplicateVote),
		errors.Is(err, service.ErrDuplicateEvaluator):
		return fiber.StatusConflict, err.Error()
	case isValidationError(err):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrVotingClosed),
		errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrUnknownCapability),
		errors.Is(err, service.ErrUnsupportedImport),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrInvalidDateRange):
		return fiber.StatusBadRequest, err.Error()
	case errors.As(err, &dataErr):
		message := "failed to " + dataErr.Op
		if dataErr.Read {
			return fiber.StatusInternalServerError, message
		}
		return fiber.StatusBadRequest, message
	default:
		return fiber.StatusInternalServerError, utils.UnexpectedErrorMessage
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.SendError(c, fiber.StatusBadRequest, message)
}
