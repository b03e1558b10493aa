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

// GroupHandler exposes judging group endpoints.
type GroupHandler struct {
	service service.GroupService
	logger  zerolog.Logger
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(service service.GroupService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		service: service,
		logger:  logger.With().Str("component", "group_handler").Logger(),
	}
}

// Register wires group routes.
func (h *GroupHandler) Register(router fiber.Router) {
	manage := middleware.Require(auth.ManageJudgingGroups)
	router.Get("", middleware.WithAuth(h.list, middleware.AuthOptions{RequireUser: true}))
	router.Post("", middleware.WithAuth(h.create, manage))
	router.Put("/:id", middleware.WithAuth(h.update, manage))
	router.Delete("/:id", middleware.WithAuth(h.delete, manage))
}

func (h *GroupHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, h.logger, err, "list groups")
	}
	return utils.SendSuccess(c, "groups retrieved", result)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	var payload dto.GroupRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.service.Create(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create group")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Group created", result)
}

func (h *GroupHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	var payload dto.GroupRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.Update(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update group")
	}
	return utils.SendSuccess(c, "Group updated", nil)
}

func (h *GroupHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	if err := h.service.Delete(c.UserContext(), identity(c), id); err != nil {
		return respondError(c, h.logger, err, "delete group")
	}
	return utils.SendSuccess(c, "Group deleted", nil)
}
