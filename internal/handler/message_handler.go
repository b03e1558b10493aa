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

// MessageHandler exposes announcement endpoints.
type MessageHandler struct {
	service service.MessageService
	logger  zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(service service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register wires message routes.
func (h *MessageHandler) Register(router fiber.Router) {
	manage := middleware.Require(auth.ManageAnnouncements)
	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.create, manage))
	router.Put("/:id", middleware.WithAuth(h.update, manage))
	router.Delete("/:id", middleware.WithAuth(h.delete, manage))
}

func (h *MessageHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, h.logger, err, "list messages")
	}
	return utils.SendSuccess(c, "messages retrieved", result)
}

func (h *MessageHandler) create(c *fiber.Ctx) error {
	var payload dto.MessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.service.Create(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create message")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Message created", result)
}

func (h *MessageHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid message id")
	}
	var payload dto.MessageUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.Update(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update message")
	}
	return utils.SendSuccess(c, "Message updated", nil)
}

func (h *MessageHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid message id")
	}
	if err := h.service.Delete(c.UserContext(), identity(c), id); err != nil {
		return respondError(c, h.logger, err, "delete message")
	}
	return utils.SendSuccess(c, "Message deleted", nil)
}
