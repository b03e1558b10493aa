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

// TaskHandler exposes internal task endpoints.
type TaskHandler struct {
	service service.TaskService
	logger  zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(service service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register wires task routes. Edits only need a logged-in caller; the
// service decides whether ownership is enforced.
func (h *TaskHandler) Register(router fiber.Router) {
	signedIn := middleware.AuthOptions{RequireUser: true}
	router.Get("", middleware.WithAuth(h.list, signedIn))
	router.Post("", middleware.WithAuth(h.create, middleware.Require(auth.AddTasks)))
	router.Put("/:id", middleware.WithAuth(h.update, signedIn))
	router.Delete("/:id", middleware.WithAuth(h.delete, middleware.Require(auth.DeleteAllTasks)))
}

func (h *TaskHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, h.logger, err, "list tasks")
	}
	return utils.SendSuccess(c, "tasks retrieved", result)
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.service.Create(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create task")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Task created", result)
}

func (h *TaskHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	var payload dto.TaskUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.Update(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update task")
	}
	return utils.SendSuccess(c, "Task updated", nil)
}

func (h *TaskHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid task id")
	}
	if err := h.service.Delete(c.UserContext(), identity(c), id); err != nil {
		return respondError(c, h.logger, err, "delete task")
	}
	return utils.SendSuccess(c, "Task deleted", nil)
}
