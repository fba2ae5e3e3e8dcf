package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type ProviderConfig struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Provider bundles the generator with the file store of the same backend.
type Provider struct {
	Generator Generator
	Files     FileStore
}

// NewProvider never fails on missing credentials: the returned provider
// answers every call with ErrMissingAPIKey so the server can still start.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	switch cfg.Provider {
	case "", ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err == ErrMissingAPIKey {
			log.Warn().Msg("GEMINI_API_KEY is not defined, generation endpoints will fail")
			return unconfigured(), nil
		}
		if err != nil {
			return nil, err
		}
		return &Provider{Generator: client, Files: client}, nil

	case ProviderOpenAI:
		var opts []option.RequestOption
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
		}
		client, err := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, opts...)
		if err == ErrMissingAPIKey {
			log.Warn().Msg("OPENAI_API_KEY is not defined, generation endpoints will fail")
			return unconfigured(), nil
		}
		if err != nil {
			return nil, err
		}
		return &Provider{Generator: client, Files: Unconfigured{Err: ErrFilesUnsupported}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}

func unconfigured() *Provider {
	u := Unconfigured{Err: ErrMissingAPIKey}
	return &Provider{Generator: u, Files: u}
}
