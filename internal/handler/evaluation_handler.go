package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// EvaluationHandler exposes recorded evaluations.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires evaluation routes. Ownership is checked by the service, so
// the routes only require a logged-in caller.
func (h *EvaluationHandler) Register(router fiber.Router) {
	signedIn := middleware.AuthOptions{RequireUser: true}
	router.Get("", middleware.WithAuth(h.list, signedIn))
	router.Put("/:id", middleware.WithAuth(h.update, signedIn))
	router.Delete("/:id", middleware.WithAuth(h.delete, signedIn))
}

func (h *EvaluationHandler) list(c *fiber.Ctx) error {
	contestID, err := parseQueryUint(c, "contest_id")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}
	evaluatorID, err := parseQueryUint(c, "evaluator_id")
	if err != nil {
		return badRequest(c, "invalid evaluator id")
	}

	result, err := h.service.List(c.UserContext(), identity(c), dto.EvaluationListRequest{ContestID: contestID, EvaluatorID: evaluatorID})
	if err != nil {
		return respondError(c, h.logger, err, "list evaluations")
	}
	return utils.SendSuccess(c, "evaluations retrieved", result)
}

func (h *EvaluationHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluation id")
	}
	var payload dto.EvaluationUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.service.Update(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update evaluation")
	}
	return utils.SendSuccess(c, "Evaluation updated", nil)
}

func (h *EvaluationHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid evaluation id")
	}
	if err := h.service.Delete(c.UserContext(), identity(c), id); err != nil {
		return respondError(c, h.logger, err, "delete evaluation")
	}
	return utils.SendSuccess(c, "Evaluation deleted", nil)
}
