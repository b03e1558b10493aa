package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// ContestantHandler exposes contestant lookups.
type ContestantHandler struct {
	service service.ContestantService
	logger  zerolog.Logger
}

// NewContestantHandler constructs the handler.
func NewContestantHandler(service service.ContestantService, logger zerolog.Logger) *ContestantHandler {
	return &ContestantHandler{
		service: service,
		logger:  logger.With().Str("component", "contestant_handler").Logger(),
	}
}

// Register wires contestant routes.
func (h *ContestantHandler) Register(router fiber.Router) {
	signedIn := middleware.AuthOptions{RequireUser: true}
	router.Get("", middleware.WithAuth(h.list, signedIn))
	router.Get("/:kaid/entries", middleware.WithAuth(h.entries, signedIn))
}

func (h *ContestantHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), identity(c), strings.TrimSpace(c.Query("search")))
	if err != nil {
		return respondError(c, h.logger, err, "list contestants")
	}
	return utils.SendSuccess(c, "contestants retrieved", result)
}

func (h *ContestantHandler) entries(c *fiber.Ctx) error {
	kaid := strings.TrimSpace(c.Params("kaid"))
	if kaid == "" {
		return badRequest(c, "invalid contestant id")
	}
	result, err := h.service.Entries(c.UserContext(), identity(c), kaid)
	if err != nil {
		return respondError(c, h.logger, err, "list contestant entries")
	}
	return utils.SendSuccess(c, "contestant entries retrieved", result)
}
