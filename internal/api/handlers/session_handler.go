package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/queue"
	"github.com/maheshrc27/repurpose-api/internal/service"
	"github.com/maheshrc27/repurpose-api/internal/sources"
	"github.com/maheshrc27/repurpose-api/internal/transfer"
)

type SessionHandler struct {
	s        service.SessionService
	enqueuer queue.Enqueuer
}

func NewSessionHandler(s service.SessionService, enqueuer queue.Enqueuer) *SessionHandler {
	if enqueuer == nil {
		enqueuer = queue.Disabled{}
	}
	return &SessionHandler{s: s, enqueuer: enqueuer}
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.s.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	session, err := h.s.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.s.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Session deleted",
	})
}

func (h *SessionHandler) Generate(c *fiber.Ctx) error {
	var req transfer.GenerateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	in := service.GenerateInput{SessionID: req.SessionID, Platform: req.Platform}
	for _, s := range req.Sources {
		in.Sources = append(in.Sources, models.Source{Type: s.Type, URL: s.URL, Title: s.Title})
	}

	session, err := h.s.Generate(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) GenerateAsync(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	if _, err := h.s.Get(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	if err := h.enqueuer.EnqueueGenerate(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "queued",
	})
}

func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req transfer.SessionPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	session, err := h.s.Update(c.UserContext(), id, service.SessionPatch{
		Title:    req.Title,
		Content:  req.Content,
		Platform: req.Platform,
		Status:   req.Status,
		Drafts:   req.Drafts(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) GenerateDraft(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}
	platform, err := models.ParsePlatform(c.Params("platform"))
	if err != nil {
		return respondError(c, err)
	}

	var req transfer.DraftRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	session, err := h.s.GenerateDraft(c.UserContext(), id, platform, service.DraftInput{
		RefinementInstruction: req.RefinementInstruction,
		Force:                 req.Force,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) AddSource(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req transfer.AddSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	session, err := h.s.AddSource(c.UserContext(), id, req.URL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) RemoveSource(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}
	sourceID, err := strconv.ParseInt(c.Params("sourceId"), 10, 64)
	if err != nil {
		return respondError(c, models.ErrInvalidSourceID)
	}

	session, err := h.s.RemoveSource(c.UserContext(), id, sourceID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) Export(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return respondError(c, err)
	}

	url, err := h.s.Export(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.ExportResponse{URL: url})
}

// Classify tags a URL without fetching it.
func (h *SessionHandler) Classify(c *fiber.Ctx) error {
	var req transfer.AddSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if strings.TrimSpace(req.URL) == "" {
		return respondError(c, models.ErrURLRequired)
	}

	kind, err := sources.Classify(req.URL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.ClassifyResponse{Type: kind})
}
