package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judging-admin-api/internal/auth"
	"github.com/noah-isme/judging-admin-api/internal/dto"
	"github.com/noah-isme/judging-admin-api/internal/middleware"
	"github.com/noah-isme/judging-admin-api/internal/service"
	"github.com/noah-isme/judging-admin-api/internal/utils"
)

// maxImportBytes bounds the size of an uploaded entry import.
const maxImportBytes = 8 << 20

// EntryHandler exposes entry and vote endpoints.
type EntryHandler struct {
	entries service.EntryService
	votes   service.VoteService
	limiter fiber.Handler
	logger  zerolog.Logger
}

// NewEntryHandler constructs the handler. limiter guards vote routes and may be nil.
func NewEntryHandler(entries service.EntryService, votes service.VoteService, limiter fiber.Handler, logger zerolog.Logger) *EntryHandler {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &EntryHandler{
		entries: entries,
		votes:   votes,
		limiter: limiter,
		logger:  logger.With().Str("component", "entry_handler").Logger(),
	}
}

// Register wires entry routes.
func (h *EntryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.create, middleware.Require(auth.AddEntries)))
	router.Post("/import", middleware.WithAuth(h.importEntries, middleware.Require(auth.AddEntries)))
	router.Post("/assign-groups", middleware.WithAuth(h.assignGroups, middleware.Require(auth.AssignEntryGroups)))
	router.Get("/:id", h.get)
	router.Put("/:id", middleware.WithAuth(h.update, middleware.Require(auth.EditEntries)))
	router.Delete("/:id", middleware.WithAuth(h.delete, middleware.Require(auth.DeleteEntries)))
	router.Post("/:id/votes", h.limiter, middleware.WithAuth(h.castVote, middleware.Require(auth.VoteEntries)))
	router.Delete("/:id/votes", h.limiter, middleware.WithAuth(h.retractVote, middleware.Require(auth.VoteEntries)))
}

func (h *EntryHandler) list(c *fiber.Ctx) error {
	contestID, err := parseQueryUint(c, "contest_id")
	if err != nil {
		return badRequest(c, "invalid contest id")
	}
	result, err := h.entries.List(c.UserContext(), identity(c), contestID)
	if err != nil {
		return respondError(c, h.logger, err, "list entries")
	}
	return utils.SendSuccess(c, "entries retrieved", result)
}

func (h *EntryHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid entry id")
	}
	result, err := h.entries.Get(c.UserContext(), identity(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "get entry")
	}
	return utils.SendSuccess(c, "entry retrieved", result)
}

func (h *EntryHandler) create(c *fiber.Ctx) error {
	var payload dto.EntryCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.entries.Create(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create entry")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Entry created", result)
}

// importEntries accepts either a multipart "file" field or a raw request body.
func (h *EntryHandler) importEntries(c *fiber.Ctx) error {
	contestID, err := parseQueryUint(c, "contest_id")
	if err != nil || contestID == 0 {
		return badRequest(c, "contest_id is required")
	}

	data := c.Body()
	if file, ferr := c.FormFile("file"); ferr == nil {
		if file.Size > maxImportBytes {
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "import file too large")
		}
		reader, err := file.Open()
		if err != nil {
			return badRequest(c, "unable to read import file")
		}
		defer reader.Close()
		data, err = io.ReadAll(io.LimitReader(reader, maxImportBytes))
		if err != nil {
			return badRequest(c, "unable to read import file")
		}
	}
	if len(data) == 0 {
		return badRequest(c, "import file is required")
	}

	result, err := h.entries.Import(c.UserContext(), identity(c), contestID, data)
	if err != nil {
		return respondError(c, h.logger, err, "import entries")
	}
	return utils.SendSuccess(c, "Entries imported", result)
}

func (h *EntryHandler) assignGroups(c *fiber.Ctx) error {
	var payload dto.EntryGroupAssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	result, err := h.entries.AssignGroups(c.UserContext(), identity(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "assign entry groups")
	}
	return utils.SendSuccess(c, "Entries assigned to groups", result)
}

func (h *EntryHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid entry id")
	}
	var payload dto.EntryUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := h.entries.Update(c.UserContext(), identity(c), id, payload); err != nil {
		return respondError(c, h.logger, err, "update entry")
	}
	return utils.SendSuccess(c, "Entry updated", nil)
}

func (h *EntryHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid entry id")
	}
	if err := h.entries.Delete(c.UserContext(), identity(c), id); err != nil {
		return respondError(c, h.logger, err, "delete entry")
	}
	return utils.SendSuccess(c, "Entry deleted", nil)
}

func (h *EntryHandler) castVote(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid entry id")
	}
	result, err := h.votes.Cast(c.UserContext(), identity(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "cast vote")
	}
	return utils.SendSuccess(c, "Vote recorded", result)
}

func (h *EntryHandler) retractVote(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid entry id")
	}
	result, err := h.votes.Retract(c.UserContext(), identity(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "retract vote")
	}
	return utils.SendSuccess(c, "Vote removed", result)
}
