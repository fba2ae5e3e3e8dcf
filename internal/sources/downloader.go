package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"
)

var errNoMuxedFormat = errors.New("no format with both audio and video")

// Downloader writes the media behind rawURL to w.
type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer) error
}

// YouTubeDownloader fetches the smallest mp4 stream carrying both audio and
// video, which is enough for the model to understand the content.
type YouTubeDownloader struct {
	client youtube.Client
}

func NewYouTubeDownloader(httpClient *http.Client) *YouTubeDownloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &YouTubeDownloader{client: youtube.Client{HTTPClient: httpClient}}
}

func (d *YouTubeDownloader) Download(ctx context.Context, rawURL string, w io.Writer) error {
	video, err := d.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("failed to look up video: %w", err)
	}

	var best *youtube.Format
	for i := range video.Formats {
		f := &video.Formats[i]
		if f.AudioChannels == 0 || f.QualityLabel == "" || !strings.Contains(f.MimeType, "video/mp4") {
			continue
		}
		if best == nil || f.Bitrate < best.Bitrate {
			best = f
		}
	}
	if best == nil {
		return errNoMuxedFormat
	}

	stream, _, err := d.client.GetStreamContext(ctx, video, best)
	if err != nil {
		return fmt.Errorf("failed to open video stream: %w", err)
	}
	defer stream.Close()

	if _, err := io.Copy(w, stream); err != nil {
		return fmt.Errorf("failed to download video: %w", err)
	}
	return nil
}

// HTTPDownloader fetches direct media links such as .mp4 and .webm files.
type HTTPDownloader struct {
	client *http.Client
}

func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDownloader{client: client}
}

func (d *HTTPDownloader) Download(ctx context.Context, rawURL string, w io.Writer) error {
	resp, err := get(ctx, d.client, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to download video: %w", err)
	}
	return nil
}

// MediaDownloader sends YouTube links to the YouTube downloader and
// everything else to plain HTTP.
type MediaDownloader struct {
	YouTube Downloader
	Direct  Downloader
}

func (d MediaDownloader) Download(ctx context.Context, rawURL string, w io.Writer) error {
	host, path := splitURL(rawURL)
	if hostIs("youtube.com", "youtu.be")(host, path) {
		return d.YouTube.Download(ctx, rawURL, w)
	}
	return d.Direct.Download(ctx, rawURL, w)
}
