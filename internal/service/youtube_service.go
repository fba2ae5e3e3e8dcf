package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ytdl "github.com/kkdai/youtube/v2"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/sources"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const maxDescriptionChars = 500

var errVideoNotFound = errors.New("youtube video not found")

// youtubeMetadataService fills source metadata from the YouTube Data API.
type youtubeMetadataService struct {
	svc *youtube.Service
}

var _ sources.Enricher = (*youtubeMetadataService)(nil)

func NewYoutubeMetadataService(ctx context.Context, apiKey string, opts ...option.ClientOption) (sources.Enricher, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &youtubeMetadataService{svc: svc}, nil
}

// Enrich only touches YouTube sources. The registry ignores its errors.
func (s *youtubeMetadataService) Enrich(ctx context.Context, src *models.Source) error {
	if src.Type != models.SourceYoutube {
		return nil
	}
	id, err := ytdl.ExtractVideoID(src.URL)
	if err != nil {
		return err
	}

	resp, err := s.svc.Videos.List([]string{"snippet"}).Id(id).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("youtube videos.list failed: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return fmt.Errorf("%w: %s", errVideoNotFound, id)
	}

	snippet := resp.Items[0].Snippet
	if snippet.Title != "" {
		src.Title = snippet.Title
	}
	if snippet.ChannelTitle != "" {
		src.Author = snippet.ChannelTitle
	}
	src.Description = sources.Truncate(snippet.Description, maxDescriptionChars)
	if published, err := time.Parse(time.RFC3339, snippet.PublishedAt); err == nil {
		src.Date = published.Format("Jan 2, 2006")
	}
	if t := snippet.Thumbnails; t != nil {
		switch {
		case t.High != nil:
			src.Thumbnail = t.High.Url
		case t.Default != nil:
			src.Thumbnail = t.Default.Url
		}
	}
	return nil
}
