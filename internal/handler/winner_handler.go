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

// WinnerHandler exposes contest winners.
type WinnerHandler struct {
	service service.WinnerService
	logger  zerolog.Logger
}

// NewWinnerHandler constructs the handler.
func NewWinnerHandler(service service.WinnerService, logger zerolog.Logger) *WinnerHandler {
	return &WinnerHandler{
		service: service,
		logger:  logger.With().Str("component", "winner_handler").Logger(),
	}
}

// Register wires winner routes.
func (h *WinnerHandler) Register(router fiber.Router) {
	manage := middleware.Require(auth.ManageWinners)
	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.add, manage))
	router.Delete("", middleware.WithAuth(h.remove, manage))
}

func (h *WinnerHandler) list(c *fiber.Ctx) error {
	var contestID *uint
	parsed, err := parseQueryUint(c, "contest_id")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}
	if parsed > 0 {
		contestID = &parsed
	}

	result, err := h.service.List(c.UserContext(), identity(c), contestID)
	if err != nil {
		return respondError(c, h.logger, err, "list winners")
	}
	return utils.SendSuccess(c, "winners retrieved", result)
}

func (h *WinnerHandler) add(c *fiber.Ctx) error {
	return h.set(c, true, "Winner added")
}

func (h *WinnerHandler) remove(c *fiber.Ctx) error {
	return h.set(c, false, "Winner removed")
}

func (h *WinnerHandler) set(c *fiber.Ctx, winner bool, message string) error {
	var payload dto.WinnerRequest
	if err := c.BodyParser(&payload); err != nil || payload.EntryID == 0 {
		return badRequest(c, "entry_id is required")
	}
	if err := h.service.Set(c.UserContext(), identity(c), payload.EntryID, winner); err != nil {
		return respondError(c, h.logger, err, "set winner")
	}
	return utils.SendSuccess(c, message, nil)
}
