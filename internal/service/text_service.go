package service

import (
	"context"
	"strings"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
)

type TextService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type textService struct {
	gen   llm.Generator
	model string
}

func NewTextService(gen llm.Generator, model string) TextService {
	return &textService{gen: gen, model: model}
}

func (s *textService) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", models.ErrPromptRequired
	}
	return s.gen.Generate(ctx, llm.Request{
		Model: s.model,
		Parts: []llm.Part{llm.TextPart(prompt)},
	})
}
