package models

import (
	"fmt"
	"time"
)

type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformBlog     Platform = "blog"
	PlatformSummary  Platform = "summary"
	PlatformImage    Platform = "image"
	PlatformDefault  Platform = "default"
)

// DraftPlatforms lists the platforms that carry a draft on a session.
var DraftPlatforms = []Platform{PlatformTwitter, PlatformLinkedIn, PlatformBlog, PlatformSummary, PlatformImage}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	for _, known := range DraftPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

const (
	SessionStatusDraft     = "draft"
	SessionStatusPublished = "published"
	SessionStatusScheduled = "scheduled"
)

func ParseStatus(s string) (string, error) {
	switch s {
	case SessionStatusDraft, SessionStatusPublished, SessionStatusScheduled:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// ParseSessionPlatform accepts the platform a session was last viewed on:
// any draft platform or the default view.
func ParseSessionPlatform(s string) (Platform, error) {
	if Platform(s) == PlatformDefault {
		return PlatformDefault, nil
	}
	return ParsePlatform(s)
}

const (
	DefaultSessionTitle = "Untitled Project"
	CreatedAtLayout     = "Jan 2, 2006, 03:04 PM"
)

// Session is one saved unit of work: a knowledge core, the sources it came
// from and the drafts derived from it.
type Session struct {
	ID              int64     `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Content         string    `db:"content" json:"content"`
	Sources         []Source  `db:"sources" json:"sources"`
	Platform        Platform  `db:"platform" json:"platform"`
	CreatedAt       string    `db:"created_at" json:"createdAt"`
	Status          string    `db:"status" json:"status"`
	TwitterContent  string    `db:"twitter_content" json:"twitterContent"`
	LinkedInContent string    `db:"linkedin_content" json:"linkedinContent"`
	BlogContent     string    `db:"blog_content" json:"blogContent"`
	SummaryContent  string    `db:"summary_content" json:"summaryContent"`
	ImageContent    string    `db:"image_content" json:"imageContent"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// Draft returns the stored draft for p.
func (s *Session) Draft(p Platform) string {
	switch p {
	case PlatformTwitter:
		return s.TwitterContent
	case PlatformLinkedIn:
		return s.LinkedInContent
	case PlatformBlog:
		return s.BlogContent
	case PlatformSummary:
		return s.SummaryContent
	case PlatformImage:
		return s.ImageContent
	}
	return ""
}

// SetDraft overwrites the draft for p and leaves every other draft alone.
func (s *Session) SetDraft(p Platform, content string) {
	switch p {
	case PlatformTwitter:
		s.TwitterContent = content
	case PlatformLinkedIn:
		s.LinkedInContent = content
	case PlatformBlog:
		s.BlogContent = content
	case PlatformSummary:
		s.SummaryContent = content
	case PlatformImage:
		s.ImageContent = content
	}
}

// ResetDrafts clears every platform draft. Called whenever Content is
// regenerated so stale drafts never sit next to a new core.
func (s *Session) ResetDrafts() {
	for _, p := range DraftPlatforms {
		s.SetDraft(p, "")
	}
}

// Clone returns a deep copy so callers can mutate without touching the store.
func (s *Session) Clone() *Session {
	c := *s
	c.Sources = append([]Source(nil), s.Sources...)
	return &c
}
