package sources

import (
	"net/url"
	"strings"

	"github.com/maheshrc27/repurpose-api/internal/models"
)

// Rule assigns Type when Match returns true for the lower-cased host and path.
type Rule struct {
	Type  models.SourceType
	Match func(host, path string) bool
}

// DefaultRules is evaluated top to bottom; the first match wins.
var DefaultRules = []Rule{
	{Type: models.SourceYoutube, Match: hostIs("youtube.com", "youtu.be")},
	{Type: models.SourceTweet, Match: hostIs("twitter.com", "x.com")},
	{Type: models.SourcePDF, Match: pathHasExt(".pdf")},
	{Type: models.SourceVideo, Match: pathHasExt(".mp4", ".webm")},
}

// Classifier tags raw URLs by inspecting the string only. It never touches the network.
type Classifier struct {
	rules    []Rule
	fallback models.SourceType
}

func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules, fallback: models.SourceArticle}
}

var defaultClassifier = NewClassifier()

// Classify tags rawURL with the default rule set.
func Classify(rawURL string) (models.SourceType, error) {
	return defaultClassifier.Classify(rawURL)
}

func (c *Classifier) Classify(rawURL string) (models.SourceType, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", models.ErrEmptyURL
	}
	host, path := splitURL(raw)
	for _, rule := range c.rules {
		if rule.Match(host, path) {
			return rule.Type, nil
		}
	}
	return c.fallback, nil
}

func splitURL(raw string) (string, string) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		// unparsable input still gets an extension check on the raw string
		lower := strings.ToLower(raw)
		if i := strings.IndexAny(lower, "?#"); i >= 0 {
			lower = lower[:i]
		}
		return "", lower
	}
	return strings.ToLower(u.Hostname()), strings.ToLower(u.Path)
}

func hostIs(domains ...string) func(host, path string) bool {
	return func(host, _ string) bool {
		for _, d := range domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return true
			}
		}
		return false
	}
}

func pathHasExt(exts ...string) func(host, path string) bool {
	return func(_, path string) bool {
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				return true
			}
		}
		return false
	}
}
