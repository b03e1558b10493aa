package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// JudgingHandler exposes the judging workflow.
type JudgingHandler struct {
	service service.JudgingService
	limiter fiber.Handler
	logger  zerolog.Logger
}

// NewJudgingHandler constructs the handler. limiter guards submissions and may be nil.
func NewJudgingHandler(service service.JudgingService, limiter fiber.Handler, logger zerolog.Logger) *JudgingHandler {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &JudgingHandler{
		service: service,
		limiter: limiter,
		logger:  logger.With().Str("component", "judging_handler").Logger(),
	}
}

// Register wires judging routes.
func (h *JudgingHandler) Register(router fiber.Router) {
	judge := middleware.Require(auth.JudgeEntries)
	router.Get("/next", middleware.WithAuth(h.next, judge))
	router.Post("/submit", h.limiter, middleware.WithAuth(h.submit, judge))
	router.Post("/flag", middleware.WithAuth(h.flag, judge))
}

func (h *JudgingHandler) next(c *fiber.Ctx) error {
	result, err := h.service.NextEntry(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, h.logger, err, "load next entry")
	}
	return utils.SendSuccess(c, "entry retrieved", result)
}

func (h *JudgingHandler) submit(c *fiber.Ctx) error {
	var payload dto.JudgingSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.service.Submit(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "submit evaluation")
	}
	return utils.SendSuccess(c, "Judging form submitted", result)
}

func (h *JudgingHandler) flag(c *fiber.Ctx) error {
	var payload dto.JudgingFlagRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.Flag(c.UserContext(), identity(c), payload); err != nil {
		return respondError(c, h.logger, err, "flag entry")
	}
	return utils.SendSuccess(c, "Entry flagged", nil)
}
