package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/maheshrc27/repurpose-api/internal/models"
)

// memorySessionRepository keeps sessions in process memory. Used when no
// database is configured; everything is lost on restart.
type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*models.Session
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: map[int64]*models.Session{}}
}

func (r *memorySessionRepository) Get(_ context.Context, id int64) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r *memorySessionRepository) List(_ context.Context) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memorySessionRepository) Put(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *memorySessionRepository) Remove(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}
