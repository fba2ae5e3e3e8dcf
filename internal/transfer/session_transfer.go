package transfer

import "github.com/maheshrc27/repurpose-api/internal/models"

type GenerateSessionRequest struct {
	SessionID int64           `json:"sessionId,omitempty"`
	Sources   []SourceRequest `json:"sources,omitempty"`
	Platform  models.Platform `json:"platform,omitempty"`
}

// SessionPatchRequest mirrors the editor's auto-save. Absent fields stay
// untouched.
type SessionPatchRequest struct {
	Title           *string          `json:"title,omitempty"`
	Content         *string          `json:"content,omitempty"`
	Platform        *models.Platform `json:"platform,omitempty"`
	Status          *string          `json:"status,omitempty"`
	TwitterContent  *string          `json:"twitterContent,omitempty"`
	LinkedInContent *string          `json:"linkedinContent,omitempty"`
	BlogContent     *string          `json:"blogContent,omitempty"`
	SummaryContent  *string          `json:"summaryContent,omitempty"`
	ImageContent    *string          `json:"imageContent,omitempty"`
}

// Drafts collects the draft fields that were present in the request.
func (r SessionPatchRequest) Drafts() map[models.Platform]string {
	fields := map[models.Platform]*string{
		models.PlatformTwitter:  r.TwitterContent,
		models.PlatformLinkedIn: r.LinkedInContent,
		models.PlatformBlog:     r.BlogContent,
		models.PlatformSummary:  r.SummaryContent,
		models.PlatformImage:    r.ImageContent,
	}
	drafts := make(map[models.Platform]string)
	for p, v := range fields {
		if v != nil {
			drafts[p] = *v
		}
	}
	return drafts
}

type DraftRequest struct {
	RefinementInstruction string `json:"refinementInstruction,omitempty"`
	Force                 bool   `json:"force,omitempty"`
}

type AddSourceRequest struct {
	URL string `json:"url"`
}

type ClassifyResponse struct {
	Type models.SourceType `json:"type"`
}

type ExportResponse struct {
	URL string `json:"url"`
}
