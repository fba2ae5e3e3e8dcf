package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/sources"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// ModeResolved fetches, extracts or uploads every source before the
	// synthesis call.
	ModeResolved = "resolved"
	// ModeDirect hands remote URIs straight to the model in a single call.
	ModeDirect = "direct"

	VideoPolicyDegrade = "degrade"
	VideoPolicyAbort   = "abort"
)

const releaseTimeout = 30 * time.Second

type OrchestratorConfig struct {
	Model       string
	Mode        string
	VideoPolicy string
	Concurrency int
}

type OrchestratorService interface {
	// Orchestrate synthesizes srcs into a Knowledge Core and returns the
	// model's reply text untouched.
	Orchestrate(ctx context.Context, srcs []models.Source) (string, error)
}

type orchestratorService struct {
	gen       llm.Generator
	resolvers sources.Resolver
	cfg       OrchestratorConfig
}

func NewOrchestratorService(gen llm.Generator, resolvers sources.Resolver, cfg OrchestratorConfig) OrchestratorService {
	if cfg.Mode == "" {
		cfg.Mode = ModeResolved
	}
	if cfg.VideoPolicy == "" {
		cfg.VideoPolicy = VideoPolicyDegrade
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &orchestratorService{gen: gen, resolvers: resolvers, cfg: cfg}
}

// ResolvedSource is one batch entry ready to be placed in the request.
type ResolvedSource struct {
	Index   int
	Type    models.SourceType
	Content sources.Resolved
}

// BuildParts lays out a synthesis request: a marker and the content for every
// source in index order, then the final instruction.
func BuildParts(items []ResolvedSource, instruction string) []llm.Part {
	parts := make([]llm.Part, 0, len(items)*2+1)
	for _, item := range items {
		parts = append(parts,
			llm.TextPart(fmt.Sprintf("--- SOURCE %d (%s) ---", item.Index, strings.ToUpper(string(item.Type)))),
			item.Content.Part(),
		)
	}
	return append(parts, llm.TextPart("--- FINAL INSTRUCTION ---\n"+instruction))
}

func (s *orchestratorService) Orchestrate(ctx context.Context, srcs []models.Source) (string, error) {
	if len(srcs) == 0 {
		return "", models.ErrNoSources
	}
	for i, src := range srcs {
		if strings.TrimSpace(src.URL) == "" {
			return "", fmt.Errorf("source %d: %w", i, models.ErrEmptyURL)
		}
	}

	var items []ResolvedSource
	if s.cfg.Mode == ModeDirect {
		items = directItems(srcs)
	} else {
		resolved, err := s.resolve(ctx, srcs)
		defer releaseAll(ctx, resolved)
		if err != nil {
			return "", err
		}
		items = resolved
	}

	log.Info().Int("sources", len(srcs)).Str("mode", s.cfg.Mode).Str("provider", s.gen.Name()).Msg("sending synthesis request")
	return s.gen.Generate(ctx, llm.Request{
		Model: s.cfg.Model,
		Parts: BuildParts(items, llm.SynthesisPrompt),
		JSON:  true,
	})
}

// resolve fills one slot per source so the request order never depends on
// which resolution finished first. The returned slice is always safe to
// release, even alongside an error.
func (s *orchestratorService) resolve(ctx context.Context, srcs []models.Source) ([]ResolvedSource, error) {
	items := make([]ResolvedSource, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, src := range srcs {
		items[i] = ResolvedSource{Index: i, Type: src.Type}
		g.Go(func() error {
			res, err := s.resolvers.Resolve(gctx, i, src)
			if err == nil {
				items[i].Content = res
				return nil
			}
			if src.Type.IsVideo() && s.cfg.VideoPolicy == VideoPolicyAbort {
				log.Error().Err(err).Int("source_index", i).Str("url", src.URL).Msg("video source failed, aborting batch")
				return fmt.Errorf("source %d (%s): %w", i, src.URL, err)
			}
			log.Warn().Err(err).Int("source_index", i).Str("url", src.URL).Msg("source resolution failed, using placeholder")
			items[i].Content = sources.Inline(sources.Placeholder(src, err))
			return nil
		})
	}
	return items, g.Wait()
}

func releaseAll(ctx context.Context, items []ResolvedSource) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	for _, item := range items {
		if err := item.Content.Release(ctx); err != nil {
			log.Error().Err(err).Int("source_index", item.Index).Msg("failed to release resolved source")
		}
	}
}

// directItems references every source by URL without fetching anything.
func directItems(srcs []models.Source) []ResolvedSource {
	items := make([]ResolvedSource, len(srcs))
	for i, src := range srcs {
		items[i] = ResolvedSource{Index: i, Type: src.Type, Content: directContent(src)}
	}
	return items
}

func directContent(src models.Source) sources.Resolved {
	ext := strings.ToLower(path.Ext(strings.SplitN(src.URL, "?", 2)[0]))
	switch {
	case src.Type == models.SourceYoutube:
		return sources.Reference(src.URL, "video/mp4")
	case src.Type == models.SourcePDF || ext == ".pdf":
		return sources.Reference(src.URL, "application/pdf")
	case src.Type == models.SourceVideo && ext == ".webm":
		return sources.Reference(src.URL, "video/webm")
	case src.Type == models.SourceVideo:
		return sources.Reference(src.URL, "video/mp4")
	}
	return sources.Inline("Analyze this web article in full and extract its core arguments: " + src.URL)
}
