package service

import (
	"context"
	"strings"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/sources"
)

type VideoService interface {
	// Summarize downloads, uploads and analyzes a single video. Any pipeline
	// failure fails the call.
	Summarize(ctx context.Context, url, prompt string) (string, error)
	// Deconstruct asks for a single-video Knowledge Core, passing the URL to
	// the model directly.
	Deconstruct(ctx context.Context, url, prompt string) (string, error)
}

type videoService struct {
	gen   llm.Generator
	video sources.Resolver
	model string
}

func NewVideoService(gen llm.Generator, video sources.Resolver, model string) VideoService {
	return &videoService{gen: gen, video: video, model: model}
}

func (s *videoService) Summarize(ctx context.Context, url, prompt string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", models.ErrURLRequired
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = llm.DefaultVideoPrompt
	}

	src := models.Source{Type: models.SourceVideo, URL: url, Title: url}
	if kind, err := sources.Classify(url); err == nil && kind == models.SourceYoutube {
		src.Type = kind
	}

	res, err := s.video.Resolve(ctx, 0, src)
	if err != nil {
		return "", err
	}
	defer releaseAll(ctx, []ResolvedSource{{Content: res}})

	return s.gen.Generate(ctx, llm.Request{
		Model: s.model,
		Parts: []llm.Part{res.Part(), llm.TextPart(prompt)},
	})
}

func (s *videoService) Deconstruct(ctx context.Context, url, prompt string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", models.ErrURLRequired
	}
	instruction := llm.DeconstructPrompt
	if p := strings.TrimSpace(prompt); p != "" {
		instruction += "\n\nAdditional instruction from the user: " + p
	}
	return s.gen.Generate(ctx, llm.Request{
		Model: s.model,
		Parts: []llm.Part{llm.FilePart(url, "video/mp4"), llm.TextPart(instruction)},
		JSON:  true,
	})
}
