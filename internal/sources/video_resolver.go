package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrVideoProcessingFailed  = errors.New("video processing failed")
	ErrVideoProcessingTimeout = errors.New("video processing timed out")
	ErrNotVideo               = errors.New("downloaded content is not a video")
)

const cleanupTimeout = 30 * time.Second

type VideoConfig struct {
	ScratchDir   string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// VideoResolver downloads a video, uploads it to the provider's file store
// and waits until the provider can use it. The local copy never outlives
// Resolve; the remote copy lives until Release.
type VideoResolver struct {
	files      llm.FileStore
	downloader Downloader
	cfg        VideoConfig
}

func NewVideoResolver(files llm.FileStore, downloader Downloader, cfg VideoConfig) *VideoResolver {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Minute
	}
	return &VideoResolver{files: files, downloader: downloader, cfg: cfg}
}

func (r *VideoResolver) Resolve(ctx context.Context, index int, src models.Source) (Resolved, error) {
	logger := log.With().Int("source_index", index).Str("url", src.URL).Logger()

	path, mimeType, err := r.download(ctx, src.URL)
	if path != "" {
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Error().Err(err).Str("path", path).Msg("failed to remove scratch video")
			}
		}()
	}
	if err != nil {
		return Resolved{}, err
	}
	logger.Info().Str("mime_type", mimeType).Msg("download complete, uploading video")

	file, err := r.files.Upload(ctx, path, mimeType, displayName(src))
	if err != nil {
		return Resolved{}, fmt.Errorf("failed to upload video: %w", err)
	}
	logger.Info().Str("file", file.Name).Msg("upload complete, waiting for processing")

	release := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		if err := r.files.Delete(ctx, file.Name); err != nil {
			logger.Error().Err(err).Str("file", file.Name).Msg("failed to delete uploaded video")
			return err
		}
		return nil
	}

	active, err := r.waitActive(ctx, file)
	if err != nil {
		_ = release(ctx)
		return Resolved{}, err
	}
	logger.Info().Str("file", active.Name).Msg("video active")

	uploadedMIME := active.MIMEType
	if uploadedMIME == "" {
		uploadedMIME = mimeType
	}
	return Reference(active.URI, uploadedMIME).WithRelease(release), nil
}

func (r *VideoResolver) download(ctx context.Context, url string) (path, mimeType string, err error) {
	tmp, err := os.CreateTemp(r.cfg.ScratchDir, ScratchPrefix+"video-*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	path = tmp.Name()

	err = r.downloader.Download(ctx, url, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return path, "", err
	}

	kind, err := filetype.MatchFile(path)
	if err != nil {
		return path, "", fmt.Errorf("failed to inspect download: %w", err)
	}
	if kind.MIME.Type != "video" {
		return path, "", fmt.Errorf("%w (detected %q)", ErrNotVideo, kind.MIME.Value)
	}
	return path, kind.MIME.Value, nil
}

func (r *VideoResolver) waitActive(ctx context.Context, file *llm.File) (*llm.File, error) {
	deadline := time.NewTimer(r.cfg.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		switch file.State {
		case llm.FileStateActive:
			return file, nil
		case llm.FileStateFailed:
			return nil, ErrVideoProcessingFailed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w after %s", ErrVideoProcessingTimeout, r.cfg.PollTimeout)
		case <-ticker.C:
		}

		next, err := r.files.Get(ctx, file.Name)
		if err != nil {
			return nil, err
		}
		file = next
	}
}

func displayName(src models.Source) string {
	if src.Title != "" && src.Title != src.URL {
		return src.Title
	}
	return fmt.Sprintf("Video %s", src.URL)
}
