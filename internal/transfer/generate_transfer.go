package transfer

import (
	"encoding/json"

	"github.com/maheshrc27/repurpose-api/internal/models"
)

type SourceRequest struct {
	Type  models.SourceType `json:"type"`
	URL   string            `json:"url"`
	Title string            `json:"title,omitempty"`
}

type OrchestrateRequest struct {
	Sources []SourceRequest `json:"sources"`
}

// ToSources keeps the caller's order; missing types are classified later.
func (r OrchestrateRequest) ToSources() []models.Source {
	out := make([]models.Source, 0, len(r.Sources))
	for _, s := range r.Sources {
		out = append(out, models.Source{Type: s.Type, URL: s.URL, Title: s.Title})
	}
	return out
}

type SocialRequest struct {
	KnowledgeCore         json.RawMessage `json:"knowledgeCore"`
	RefinementInstruction string          `json:"refinementInstruction,omitempty"`
	TargetPlatform        string          `json:"targetPlatform,omitempty"`
	ExistingContent       string          `json:"existingContent,omitempty"`
}

type TextRequest struct {
	Prompt string `json:"prompt"`
}

type VideoRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt,omitempty"`
}

type TextResponse struct {
	Text string `json:"text"`
}
