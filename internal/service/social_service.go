package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/maheshrc27/repurpose-api/internal/knowledge"
	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrDraftGeneration means the model answered but not with the requested
// draft. Nothing is stored and the caller may simply try again.
var ErrDraftGeneration = errors.New("failed to generate draft")

const threadSeparator = "\n\n---\n\n"

var draftKeys = map[models.Platform]string{
	models.PlatformTwitter:  llm.KeyTwitterThread,
	models.PlatformLinkedIn: llm.KeyLinkedInPost,
	models.PlatformBlog:     llm.KeyBlogPost,
	models.PlatformImage:    llm.KeyImageCaption,
	models.PlatformSummary:  llm.KeySummary,
}

// SocialInput is the free-form request behind the legacy social endpoint.
type SocialInput struct {
	KnowledgeCore         json.RawMessage
	RefinementInstruction string
	TargetPlatform        string
	ExistingContent       string
}

type SocialService interface {
	// Generate produces the initial draft for one platform.
	Generate(ctx context.Context, core *knowledge.Core, platform models.Platform) (string, error)
	// Refine rewrites an existing draft for one platform.
	Refine(ctx context.Context, core *knowledge.Core, platform models.Platform, existing, instruction string) (string, error)
	// Raw returns the model reply unparsed.
	Raw(ctx context.Context, in SocialInput) (string, error)
}

type socialService struct {
	gen   llm.Generator
	model string
}

func NewSocialService(gen llm.Generator, model string) SocialService {
	return &socialService{gen: gen, model: model}
}

func (s *socialService) Generate(ctx context.Context, core *knowledge.Core, platform models.Platform) (string, error) {
	key, ok := draftKeys[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownPlatform, platform)
	}

	// Both of these come straight from the core without a model call.
	switch platform {
	case models.PlatformSummary:
		if text := core.Text(); text != "" {
			return text, nil
		}
	case models.PlatformImage:
		if prompts := core.ImagePrompts(); len(prompts) > 0 {
			return prompts[0], nil
		}
	}

	reply, err := s.ask(ctx, llm.GenerationPrompt(key, core.Text(), core.Hooks()))
	if err != nil {
		return "", err
	}
	return extractDraft(reply, key)
}

func (s *socialService) Refine(ctx context.Context, core *knowledge.Core, platform models.Platform, existing, instruction string) (string, error) {
	key, ok := draftKeys[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownPlatform, platform)
	}
	reply, err := s.ask(ctx, llm.RefinementPrompt(key, string(platform), existing, instruction, core.Text()))
	if err != nil {
		return "", err
	}
	return extractDraft(reply, key)
}

func (s *socialService) Raw(ctx context.Context, in SocialInput) (string, error) {
	core := coreText(in.KnowledgeCore)

	var prompt string
	key := in.TargetPlatform
	if k, ok := draftKeys[models.Platform(in.TargetPlatform)]; ok {
		key = k
	}
	switch {
	case in.RefinementInstruction != "":
		prompt = llm.RefinementPrompt(key, in.TargetPlatform, in.ExistingContent, in.RefinementInstruction, core)
	case in.TargetPlatform != "":
		prompt = llm.GenerationPrompt(key, core, knowledge.Parse(core).Hooks())
	default:
		prompt = llm.CombinedGenerationPrompt(core)
	}
	return s.ask(ctx, prompt)
}

func (s *socialService) ask(ctx context.Context, prompt string) (string, error) {
	return s.gen.Generate(ctx, llm.Request{
		Model: s.model,
		Parts: []llm.Part{llm.TextPart(llm.SocialSystemPrompt), llm.TextPart(prompt)},
		JSON:  true,
	})
}

// coreText accepts a core sent either as a JSON object or as a JSON string
// holding the raw text.
func coreText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// extractDraft pulls one key out of the model's JSON reply. Threads arrive
// as lists and are joined into a single editable string.
func extractDraft(reply, key string) (string, error) {
	parsed := knowledge.Parse(reply)
	if !parsed.Structured() {
		log.Warn().Str("key", key).Msg("draft reply is not valid JSON")
		return "", fmt.Errorf("%w: reply is not valid JSON", ErrDraftGeneration)
	}

	switch v := parsed.Fields[key].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return v, nil
		}
	case []any:
		segments := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				segments = append(segments, s)
			}
		}
		if len(segments) > 0 {
			return strings.Join(segments, threadSeparator), nil
		}
	}
	log.Warn().Str("key", key).Msg("draft reply is missing its key")
	return "", fmt.Errorf("%w: reply has no %q", ErrDraftGeneration, key)
}
