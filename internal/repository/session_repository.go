package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maheshrc27/repurpose-api/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository owns the persisted sessions. List returns newest first.
type SessionRepository interface {
	Get(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context) ([]*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	Remove(ctx context.Context, id int64) error
}

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id               BIGINT PRIMARY KEY,
		title            TEXT NOT NULL,
		content          TEXT NOT NULL DEFAULT '',
		sources          JSONB NOT NULL DEFAULT '[]',
		platform         TEXT NOT NULL DEFAULT 'default',
		created_at       TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'draft',
		twitter_content  TEXT NOT NULL DEFAULT '',
		linkedin_content TEXT NOT NULL DEFAULT '',
		blog_content     TEXT NOT NULL DEFAULT '',
		summary_content  TEXT NOT NULL DEFAULT '',
		image_content    TEXT NOT NULL DEFAULT '',
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

const sessionColumns = `id, title, content, sources, platform, created_at, status,
	twitter_content, linkedin_content, blog_content, summary_content, image_content, updated_at`

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// MigrateSessions creates the sessions table when it does not exist yet.
func MigrateSessions(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sessionSchema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		log.Error().Err(err).Int64("session_id", id).Msg("failed to load session")
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sessions")
		return nil, err
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error().Err(err).Msg("failed to scan session")
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) Put(ctx context.Context, s *models.Session) error {
	srcs, err := json.Marshal(nonNilSources(s.Sources))
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			sources = EXCLUDED.sources,
			platform = EXCLUDED.platform,
			status = EXCLUDED.status,
			twitter_content = EXCLUDED.twitter_content,
			linkedin_content = EXCLUDED.linkedin_content,
			blog_content = EXCLUDED.blog_content,
			summary_content = EXCLUDED.summary_content,
			image_content = EXCLUDED.image_content,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Title, s.Content, string(srcs), s.Platform, s.CreatedAt, s.Status,
		s.TwitterContent, s.LinkedInContent, s.BlogContent, s.SummaryContent, s.ImageContent, s.UpdatedAt)
	if err != nil {
		log.Error().Err(err).Int64("session_id", s.ID).Msg("failed to save session")
		return err
	}
	return nil
}

func (r *sessionRepository) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int64("session_id", id).Msg("failed to delete session")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var s models.Session
	var srcs []byte
	err := row.Scan(&s.ID, &s.Title, &s.Content, &srcs, &s.Platform, &s.CreatedAt, &s.Status,
		&s.TwitterContent, &s.LinkedInContent, &s.BlogContent, &s.SummaryContent, &s.ImageContent, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(srcs, &s.Sources); err != nil {
		return nil, fmt.Errorf("failed to decode sources of session %d: %w", s.ID, err)
	}
	return &s, nil
}

func nonNilSources(s []models.Source) []models.Source {
	if s == nil {
		return []models.Source{}
	}
	return s
}
