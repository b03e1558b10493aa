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

// EvaluatorHandler exposes evaluator account management under /users.
type EvaluatorHandler struct {
	service service.EvaluatorService
	logger  zerolog.Logger
}

// NewEvaluatorHandler constructs the handler.
func NewEvaluatorHandler(service service.EvaluatorService, logger zerolog.Logger) *EvaluatorHandler {
	return &EvaluatorHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluator_handler").Logger(),
	}
}

// Register wires evaluator routes.
func (h *EvaluatorHandler) Register(router fiber.Router) {
	signedIn := middleware.AuthOptions{RequireUser: true}
	router.Get("", middleware.WithAuth(h.list, middleware.Require(auth.ViewAllUsers)))
	router.Post("", middleware.WithAuth(h.create, middleware.Require(auth.AddUsers)))
	router.Get("/:id", middleware.WithAuth(h.get, signedIn))
	router.Put("/:id", middleware.WithAuth(h.update, signedIn))
	router.Put("/:id/lock", middleware.WithAuth(h.setLocked, middleware.Require(auth.EditUserProfiles)))
	router.Put("/:id/group", middleware.WithAuth(h.assignGroup, middleware.Require(auth.AssignEvaluatorGroups)))
	router.Put("/:id/permissions", middleware.WithAuth(h.updatePermissions, middleware.Require(auth.ChangeUserPermissions)))
	router.Delete("/:id", middleware.WithAuth(h.delete, middleware.Require(auth.DeleteUsers)))
}

func (h *EvaluatorHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), identity(c))
	if err != nil {
		return respondError(c, h.logger, err, "list evaluators")
	}
	return utils.SendSuccess(c, "evaluators retrieved", result)
}

func (h *EvaluatorHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluator id")
	}
	result, err := h.service.Get(c.UserContext(), identity(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "get evaluator")
	}
	return utils.SendSuccess(c, "evaluator retrieved", result)
}

func (h *EvaluatorHandler) create(c *fiber.Ctx) error {
	var payload dto.EvaluatorCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.service.Create(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create evaluator")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "User created", result)
}

func (h *EvaluatorHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluator id")
	}
	var payload dto.EvaluatorUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.Update(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update evaluator")
	}
	return utils.SendSuccess(c, "User updated", nil)
}

func (h *EvaluatorHandler) setLocked(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluator id")
	}
	var payload dto.AccountLockRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.SetLocked(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "lock evaluator")
	}
	return utils.SendSuccess(c, "User lock updated", nil)
}

func (h *EvaluatorHandler) assignGroup(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluator id")
	}
	var payload dto.GroupAssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.AssignGroup(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "assign evaluator group")
	}
	return utils.SendSuccess(c, "User group updated", nil)
}

func (h *EvaluatorHandler) updatePermissions(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluator id")
	}
	var payload dto.PermissionsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.UpdatePermissions(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update permissions")
	}
	return utils.SendSuccess(c, "Permissions updated", nil)
}

func (h *EvaluatorHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluator id")
	}
	if err := h.service.Delete(c.UserContext(), identity(c), id); err != nil {
		return respondError(c, h.logger, err, "delete evaluator")
	}
	return utils.SendSuccess(c, "User deleted", nil)
}
