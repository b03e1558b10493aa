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

// ContestHandler exposes contest endpoints.
type ContestHandler struct {
	service service.ContestService
	logger  zerolog.Logger
}

// NewContestHandler constructs the handler.
func NewContestHandler(service service.ContestService, logger zerolog.Logger) *ContestHandler {
	return &ContestHandler{
		service: service,
		logger:  logger.With().Str("component", "contest_handler").Logger(),
	}
}

// Register wires contest routes.
func (h *ContestHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", middleware.WithAuth(h.create, middleware.Require(auth.AddContests)))
	router.Put("/:id", middleware.WithAuth(h.update, middleware.Require(auth.EditContests)))
	router.Delete("/:id", middleware.WithAuth(h.delete, middleware.Require(auth.DeleteContests)))
}

func (h *ContestHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, h.logger, err, "list contests")
	}
	return utils.SendSuccess(c, "contests retrieved", result)
}

func (h *ContestHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}
	result, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "get contest")
	}
	return utils.SendSuccess(c, "contest retrieved", result)
}

func (h *ContestHandler) create(c *fiber.Ctx) error {
	var payload dto.ContestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.service.Create(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create contest")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Contest created", result)
}

func (h *ContestHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}
	var payload dto.ContestUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.Update(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update contest")
	}
	return utils.SendSuccess(c, "Contest updated", nil)
}

func (h *ContestHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}
	if err := h.service.Delete(c.UserContext(), identity(c), id); err != nil {
		return respondError(c, h.logger, err, "delete contest")
	}
	return utils.SendSuccess(c, "Contest deleted", nil)
}
