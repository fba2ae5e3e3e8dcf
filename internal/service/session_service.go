package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/maheshrc27/repurpose-api/internal/knowledge"
	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/maheshrc27/repurpose-api/internal/repository"
	"github.com/maheshrc27/repurpose-api/internal/sources"
	"github.com/rs/zerolog/log"
)

// GenerateInput starts or regenerates a session. A zero SessionID creates a
// new session; empty Sources reuse the stored ones.
type GenerateInput struct {
	SessionID int64
	Sources   []models.Source
	Platform  models.Platform
}

type DraftInput struct {
	RefinementInstruction string
	// Force regenerates even when a draft already exists.
	Force bool
}

// SessionPatch carries manual edits. Nil fields are left alone.
type SessionPatch struct {
	Title    *string
	Content  *string
	Platform *models.Platform
	Status   *string
	Drafts   map[models.Platform]string
}

type SessionExporter interface {
	Export(ctx context.Context, session *models.Session) (string, error)
}

type SessionService interface {
	Generate(ctx context.Context, in GenerateInput) (*models.Session, error)
	GenerateDraft(ctx context.Context, id int64, platform models.Platform, in DraftInput) (*models.Session, error)
	Update(ctx context.Context, id int64, patch SessionPatch) (*models.Session, error)
	AddSource(ctx context.Context, id int64, rawURL string) (*models.Session, error)
	RemoveSource(ctx context.Context, id, sourceID int64) (*models.Session, error)
	Get(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context) ([]*models.Session, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, id int64) (string, error)
}

type SessionOption func(*sessionService)

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *sessionService) { s.now = now }
}

func WithSourceEnricher(e sources.Enricher) SessionOption {
	return func(s *sessionService) { s.enricher = e }
}

func WithExporter(e SessionExporter) SessionOption {
	return func(s *sessionService) { s.exporter = e }
}

type sessionService struct {
	repo     repository.SessionRepository
	orch     OrchestratorService
	social   SocialService
	enricher sources.Enricher
	exporter SessionExporter
	now      func() time.Time

	// mu guards inflight and lastID.
	mu       sync.Mutex
	inflight map[string]struct{}
	lastID   int64

	// writeMu serializes read-modify-write cycles on the store.
	writeMu sync.Mutex
}

func NewSessionService(repo repository.SessionRepository, orch OrchestratorService, social SocialService, opts ...SessionOption) SessionService {
	s := &sessionService{
		repo:     repo,
		orch:     orch,
		social:   social,
		now:      time.Now,
		inflight: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func generationKey(id int64) string {
	return fmt.Sprintf("core:%d", id)
}

func draftKey(id int64, p models.Platform) string {
	return fmt.Sprintf("draft:%d:%s", id, p)
}

// acquire marks key as running. The returned func must be called when the
// work is done.
func (s *sessionService) acquire(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, ErrGenerationInProgress
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}

func (s *sessionService) busy(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[key]
	return ok
}

func (s *sessionService) newSessionID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *sessionService) Generate(ctx context.Context, in GenerateInput) (*models.Session, error) {
	if in.Platform != "" {
		if _, err := models.ParseSessionPlatform(string(in.Platform)); err != nil {
			return nil, err
		}
	}

	srcs := in.Sources
	if in.SessionID != 0 {
		existing, err := s.repo.Get(ctx, in.SessionID)
		if err != nil {
			return nil, err
		}
		if len(srcs) == 0 {
			srcs = existing.Sources
		}
	}
	srcs, err := sources.Normalize(srcs, s.now())
	if err != nil {
		return nil, err
	}

	id := in.SessionID
	if id == 0 {
		id = s.newSessionID()
	}
	release, err := s.acquire(generationKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	text, err := s.orch.Orchestrate(ctx, srcs)
	if err != nil {
		log.Error().Err(err).Int64("session_id", id).Msg("knowledge core generation failed")
		return nil, err
	}
	core := knowledge.Parse(text)
	if !core.Structured() {
		log.Warn().Int64("session_id", id).Msg("knowledge core is not valid JSON, keeping raw text")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var session *models.Session
	if in.SessionID != 0 {
		session, err = s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
	} else {
		session = &models.Session{
			ID:        id,
			CreatedAt: s.now().Format(models.CreatedAtLayout),
			Status:    models.SessionStatusDraft,
			Platform:  models.PlatformDefault,
		}
	}

	session.Title = primaryTitle(srcs, core)
	session.Content = core.Text()
	session.Sources = srcs
	session.ResetDrafts()
	if in.Platform != "" {
		session.Platform = in.Platform
	}
	session.UpdatedAt = s.now()

	if err := s.repo.Put(ctx, session); err != nil {
		return nil, err
	}
	log.Info().Int64("session_id", id).Int("sources", len(srcs)).Bool("structured", core.Structured()).Msg("knowledge core stored")
	return session, nil
}

// primaryTitle prefers the first YouTube source, then the first source. A
// source whose title is still its URL loses to the core's own title.
func primaryTitle(srcs []models.Source, core *knowledge.Core) string {
	var primary *models.Source
	for i := range srcs {
		if srcs[i].Type == models.SourceYoutube {
			primary = &srcs[i]
			break
		}
	}
	if primary == nil && len(srcs) > 0 {
		primary = &srcs[0]
	}

	if primary != nil && primary.Title != "" && primary.Title != primary.URL {
		return primary.Title
	}
	if title := strings.TrimSpace(core.Title()); title != "" {
		return title
	}
	if primary != nil && primary.Title != "" {
		return primary.Title
	}
	return models.DefaultSessionTitle
}

func (s *sessionService) GenerateDraft(ctx context.Context, id int64, platform models.Platform, in DraftInput) (*models.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	refine := strings.TrimSpace(in.RefinementInstruction) != ""
	if !refine && !in.Force && session.Draft(platform) != "" {
		return session, nil
	}
	if strings.TrimSpace(session.Content) == "" {
		return nil, models.ErrNoKnowledgeCore
	}
	if s.busy(generationKey(id)) {
		return nil, ErrGenerationInProgress
	}

	release, err := s.acquire(draftKey(id, platform))
	if err != nil {
		return nil, err
	}
	defer release()

	core := knowledge.Parse(session.Content)
	var draft string
	if refine {
		draft, err = s.social.Refine(ctx, core, platform, session.Draft(platform), in.RefinementInstruction)
	} else {
		draft, err = s.social.Generate(ctx, core, platform)
	}
	if err != nil {
		log.Error().Err(err).Int64("session_id", id).Str("platform", string(platform)).Msg("draft generation failed")
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Content != session.Content {
		return nil, ErrCoreChanged
	}
	current.SetDraft(platform, draft)
	current.Platform = platform
	current.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *sessionService) Update(ctx context.Context, id int64, patch SessionPatch) (*models.Session, error) {
	if patch.Platform != nil {
		if _, err := models.ParseSessionPlatform(string(*patch.Platform)); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		if _, err := models.ParseStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	for p := range patch.Drafts {
		if _, err := models.ParsePlatform(string(p)); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, id, func(session *models.Session) error {
		if patch.Title != nil {
			session.Title = *patch.Title
		}
		if patch.Content != nil {
			session.Content = *patch.Content
		}
		if patch.Platform != nil {
			session.Platform = *patch.Platform
		}
		if patch.Status != nil {
			session.Status = *patch.Status
		}
		for p, content := range patch.Drafts {
			session.SetDraft(p, content)
		}
		return nil
	})
}

// AddSource enriches outside the write lock; only the insert is serialized.
func (s *sessionService) AddSource(ctx context.Context, id int64, rawURL string) (*models.Session, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	src, err := sources.Prepare(ctx, rawURL, s.enricher)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(session *models.Session) error {
		reg := sources.NewRegistry(session.Sources, sources.WithClock(s.now))
		reg.Insert(src)
		session.Sources = reg.List()
		return nil
	})
}

func (s *sessionService) RemoveSource(ctx context.Context, id, sourceID int64) (*models.Session, error) {
	return s.mutate(ctx, id, func(session *models.Session) error {
		reg := sources.NewRegistry(session.Sources)
		if !reg.Remove(sourceID) {
			return ErrSourceNotFound
		}
		session.Sources = reg.List()
		return nil
	})
}

func (s *sessionService) mutate(ctx context.Context, id int64, fn func(*models.Session) error) (*models.Session, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id int64) (*models.Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *sessionService) List(ctx context.Context) ([]*models.Session, error) {
	return s.repo.List(ctx)
}

func (s *sessionService) Delete(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.repo.Remove(ctx, id)
}

func (s *sessionService) Export(ctx context.Context, id int64) (string, error) {
	if s.exporter == nil {
		return "", ErrExportDisabled
	}
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.exporter.Export(ctx, session)
}
