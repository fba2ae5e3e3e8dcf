package sources

import (
	"context"
	"fmt"
	"sync"

	"github.com/maheshrc27/repurpose-api/internal/llm"
	"github.com/maheshrc27/repurpose-api/internal/models"
)

// ScratchPrefix starts the name of every local download (videos and PDFs) so
// the sweeper can find files left behind by a crash.
const ScratchPrefix = "repurpose-"

// Resolver turns one source into content that can sit inside a model request.
// index is the source's position in the batch and is only used for logging.
type Resolver interface {
	Resolve(ctx context.Context, index int, src models.Source) (Resolved, error)
}

// Resolved is either inline text or a reference to remote content the
// provider can read. Release frees whatever was allocated to produce it.
type Resolved struct {
	Text     string
	URI      string
	MIMEType string

	release *releaser
}

type releaser struct {
	once sync.Once
	fn   func(context.Context) error
	err  error
}

func Inline(text string) Resolved {
	return Resolved{Text: text}
}

func Reference(uri, mimeType string) Resolved {
	return Resolved{URI: uri, MIMEType: mimeType}
}

// WithRelease attaches a cleanup func that runs at most once.
func (r Resolved) WithRelease(fn func(context.Context) error) Resolved {
	r.release = &releaser{fn: fn}
	return r
}

func (r Resolved) IsReference() bool {
	return r.URI != ""
}

// Part converts the resolved content into a request segment.
func (r Resolved) Part() llm.Part {
	if r.IsReference() {
		return llm.FilePart(r.URI, r.MIMEType)
	}
	return llm.TextPart(r.Text)
}

// Release is safe to call any number of times, including on the zero value.
func (r Resolved) Release(ctx context.Context) error {
	if r.release == nil {
		return nil
	}
	r.release.once.Do(func() {
		r.release.err = r.release.fn(ctx)
	})
	return r.release.err
}

// Placeholder stands in for a source that could not be retrieved.
func Placeholder(src models.Source, reason error) string {
	return fmt.Sprintf("[The content of this %s source (%s) could not be retrieved: %v. "+
		"Rely on your general knowledge of this URL and its topic instead.]", src.Type, src.URL, reason)
}

// ResolverSet picks a resolver by source type.
type ResolverSet struct {
	byType   map[models.SourceType]Resolver
	fallback Resolver
}

// NewResolverSet routes article-like types to text, pdf to pdf and video
// types to video. Types without a route use text.
func NewResolverSet(text, pdf, video Resolver) *ResolverSet {
	return &ResolverSet{
		byType: map[models.SourceType]Resolver{
			models.SourceArticle: text,
			models.SourceNews:    text,
			models.SourceTweet:   text,
			models.SourceBlog:    text,
			models.SourcePDF:     pdf,
			models.SourceYoutube: video,
			models.SourceVideo:   video,
		},
		fallback: text,
	}
}

func (s *ResolverSet) For(t models.SourceType) Resolver {
	if r, ok := s.byType[t]; ok && r != nil {
		return r
	}
	return s.fallback
}

func (s *ResolverSet) Resolve(ctx context.Context, index int, src models.Source) (Resolved, error) {
	return s.For(src.Type).Resolve(ctx, index, src)
}

// Unsupported fails every resolution with Err. It stands in for the video
// resolver when the provider has no file storage.
type Unsupported struct {
	Err error
}

func (u Unsupported) Resolve(context.Context, int, models.Source) (Resolved, error) {
	return Resolved{}, u.Err
}
