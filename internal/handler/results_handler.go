package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResultsHandler exposes contest standings.
type ResultsHandler struct {
	service service.ResultsService
	logger  zerolog.Logger
}

// NewResultsHandler constructs the handler.
func NewResultsHandler(service service.ResultsService, logger zerolog.Logger) *ResultsHandler {
	return &ResultsHandler{
		service: service,
		logger:  logger.With().Str("component", "results_handler").Logger(),
	}
}

// Register wires results routes.
func (h *ResultsHandler) Register(router fiber.Router) {
	router.Get("/:contestId", h.get)
	router.Get("/:contestId/export", middleware.WithAuth(h.export, middleware.Require(auth.ViewAdminStats)))
}

func (h *ResultsHandler) get(c *fiber.Ctx) error {
	contestID, err := parseIDParam(c, "contestId")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}

	result, err := h.service.Get(c.UserContext(), identity(c), contestID)
	if err != nil {
		return respondError(c, h.logger, err, "load results")
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}
	return utils.SendSuccess(c, "results retrieved", result)
}

func (h *ResultsHandler) export(c *fiber.Ctx) error {
	contestID, err := parseIDParam(c, "contestId")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}

	data, err := h.service.Export(c.UserContext(), identity(c), contestID)
	if err != nil {
		return respondError(c, h.logger, err, "export results")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"contest-%d-results.xlsx\"", contestID))
	return c.Send(data)
}
