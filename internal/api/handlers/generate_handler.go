package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/repurpose-api/internal/service"
	"github.com/maheshrc27/repurpose-api/internal/sources"
	"github.com/maheshrc27/repurpose-api/internal/transfer"
)

// GenerateHandler serves the stateless model endpoints.
type GenerateHandler struct {
	orch   service.OrchestratorService
	social service.SocialService
	text   service.TextService
	video  service.VideoService
}

func NewGenerateHandler(
	orch service.OrchestratorService,
	social service.SocialService,
	text service.TextService,
	video service.VideoService) *GenerateHandler {
	return &GenerateHandler{
		orch:   orch,
		social: social,
		text:   text,
		video:  video,
	}
}

func (h *GenerateHandler) Orchestrate(c *fiber.Ctx) error {
	var req transfer.OrchestrateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	srcs, err := sources.Normalize(req.ToSources(), time.Now())
	if err != nil {
		return respondError(c, err)
	}

	text, err := h.orch.Orchestrate(c.UserContext(), srcs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.TextResponse{Text: text})
}

func (h *GenerateHandler) Social(c *fiber.Ctx) error {
	var req transfer.SocialRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	text, err := h.social.Raw(c.UserContext(), service.SocialInput{
		KnowledgeCore:         req.KnowledgeCore,
		RefinementInstruction: req.RefinementInstruction,
		TargetPlatform:        req.TargetPlatform,
		ExistingContent:       req.ExistingContent,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.TextResponse{Text: text})
}

func (h *GenerateHandler) Text(c *fiber.Ctx) error {
	var req transfer.TextRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	text, err := h.text.Complete(c.UserContext(), req.Prompt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.TextResponse{Text: text})
}

// Video backs both /video and /youtube.
func (h *GenerateHandler) Video(c *fiber.Ctx) error {
	var req transfer.VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	text, err := h.video.Summarize(c.UserContext(), req.URL, req.Prompt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.TextResponse{Text: text})
}

func (h *GenerateHandler) Deconstruct(c *fiber.Ctx) error {
	var req transfer.VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	text, err := h.video.Deconstruct(c.UserContext(), req.URL, req.Prompt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer.TextResponse{Text: text})
}
