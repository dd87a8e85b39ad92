package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

const defaultContentType = "application/octet-stream"

// Store хранит объекты в таблице proposal_blobs.
type Store struct {
	db            *sqlx.DB
	publicBaseURL string
}

func New(db *sqlx.DB, publicBaseURL string) *Store {
	return &Store{db: db, publicBaseURL: publicBaseURL}
}

func (s *Store) Put(ctx context.Context, key string, content []byte, opts repository.PutOptions) (string, error) {
	key, err := objectstore.CleanKey(key)
	if err != nil {
		return "", err
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	query := `
		INSERT INTO proposal_blobs (pathname, content, content_type, is_public)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pathname) DO UPDATE
		SET content = EXCLUDED.content,
		    content_type = EXCLUDED.content_type,
		    is_public = EXCLUDED.is_public,
		    updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, content, contentType, opts.Public); err != nil {
		return "", fmt.Errorf("pgstore: put %s: %w", key, err)
	}
	return objectstore.PublicURL(s.publicBaseURL, key), nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]repository.Object, error) {
	var pathnames []string
	query := `
		SELECT pathname FROM proposal_blobs
		WHERE is_public AND pathname LIKE $1 ESCAPE '\'
		ORDER BY pathname
	`
	if err := s.db.SelectContext(ctx, &pathnames, query, escapeLike(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("pgstore: list %s: %w", prefix, err)
	}

	objects := make([]repository.Object, 0, len(pathnames))
	for _, p := range pathnames {
		objects = append(objects, repository.Object{Pathname: p, URL: objectstore.PublicURL(s.publicBaseURL, p)})
	}
	return objects, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	var row struct {
		Content     []byte `db:"content"`
		ContentType string `db:"content_type"`
	}
	query := `SELECT content, content_type FROM proposal_blobs WHERE pathname = $1 AND is_public`
	if err := s.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", apperror.ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("pgstore: get %s: %w", key, err)
	}
	return row.Content, row.ContentType, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
