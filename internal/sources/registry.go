package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	defaultAuthor = "Unknown"
	defaultDate   = "Just now"
)

// Enricher fills display metadata for a freshly created source.
type Enricher interface {
	Enrich(ctx context.Context, src *models.Source) error
}

// Registry is the ordered list of sources a user has added. Newest first.
type Registry struct {
	mu     sync.Mutex
	items  []models.Source
	lastID int64
	now    func() time.Time
}

type RegistryOption func(*Registry)

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry seeds the registry with existing sources, e.g. a session snapshot.
func NewRegistry(existing []models.Source, opts ...RegistryOption) *Registry {
	r := &Registry{
		items: append([]models.Source(nil), existing...),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, s := range r.items {
		if s.ID > r.lastID {
			r.lastID = s.ID
		}
	}
	return r
}

// Prepare classifies rawURL and fills display metadata without touching any
// registry, so slow enrichment can run before a caller takes its locks.
// Enrichment failures are logged and leave the defaults in place.
func Prepare(ctx context.Context, rawURL string, enricher Enricher) (models.Source, error) {
	u := strings.TrimSpace(rawURL)
	kind, err := Classify(u)
	if err != nil {
		return models.Source{}, err
	}

	src := models.Source{
		Type:   kind,
		Title:  u,
		URL:    u,
		Author: defaultAuthor,
		Date:   defaultDate,
	}
	if enricher != nil {
		if err := enricher.Enrich(ctx, &src); err != nil {
			log.Warn().Err(err).Str("url", u).Msg("source metadata enrichment failed")
		}
	}
	return src, nil
}

// Insert gives src a fresh ID and puts it at the front of the list.
func (r *Registry) Insert(src models.Source) models.Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	src.ID = r.nextID()
	r.items = append([]models.Source{src}, r.items...)
	return src
}

// nextID hands out creation timestamps in milliseconds, bumped to stay unique.
func (r *Registry) nextID() int64 {
	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}

// Remove drops the source with the given id. It reports whether one was found.
func (r *Registry) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.items {
		if s.ID == id {
			r.items = append(r.items[:i:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a snapshot; later mutations do not show through.
func (r *Registry) List() []models.Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Source(nil), r.items...)
}

// Normalize validates sources submitted as a batch. URLs are trimmed, missing
// or unknown types are classified, display defaults are applied and zero IDs
// get fresh unique ones. Order is preserved.
func Normalize(list []models.Source, now time.Time) ([]models.Source, error) {
	if len(list) == 0 {
		return nil, models.ErrNoSources
	}
	var lastID int64
	for _, s := range list {
		if s.ID > lastID {
			lastID = s.ID
		}
	}

	out := make([]models.Source, len(list))
	seen := map[int64]bool{}
	for i, s := range list {
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			return nil, fmt.Errorf("source %d: %w", i, models.ErrEmptyURL)
		}
		if !s.Type.Valid() {
			kind, err := Classify(s.URL)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			s.Type = kind
		}
		if s.Title == "" {
			s.Title = s.URL
		}
		if s.Author == "" {
			s.Author = defaultAuthor
		}
		if s.Date == "" {
			s.Date = defaultDate
		}
		if s.ID == 0 || seen[s.ID] {
			id := now.UnixMilli()
			if id <= lastID {
				id = lastID + 1
			}
			s.ID = id
		}
		if s.ID > lastID {
			lastID = s.ID
		}
		seen[s.ID] = true
		out[i] = s
	}
	return out, nil
}
