package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

const (
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	DefaultMaxChars = 12000
	maxPageBytes    = 5 << 20
)

var ignoreHTMLTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
	"head":     true,
}

var errNoReadableText = errors.New("page has no readable text")

// TextResolver fetches a page and keeps its visible text. It never fails:
// fetch problems turn into a placeholder note.
type TextResolver struct {
	client   *http.Client
	maxChars int
}

func NewTextResolver(client *http.Client, maxChars int) *TextResolver {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &TextResolver{client: client, maxChars: maxChars}
}

func (r *TextResolver) Resolve(ctx context.Context, index int, src models.Source) (Resolved, error) {
	text, err := r.Fetch(ctx, src.URL)
	if err != nil {
		log.Warn().Err(err).Int("source_index", index).Str("url", src.URL).Msg("text source fetch failed, using placeholder")
		return Inline(Placeholder(src, err)), nil
	}
	return Inline(fmt.Sprintf("Content extracted from %s:\n\n%s", src.URL, text)), nil
}

// Fetch returns the page's visible text, whitespace collapsed and truncated.
func (r *TextResolver) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := get(ctx, r.client, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	text := Truncate(ExtractText(doc), r.maxChars)
	if text == "" {
		return "", errNoReadableText
	}
	return text, nil
}

// ExtractText collects the text nodes outside script-like elements and
// collapses all whitespace runs to single spaces.
func ExtractText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && ignoreHTMLTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}
