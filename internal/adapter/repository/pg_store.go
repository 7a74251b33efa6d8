package repository

import (
	"context"
	"errors"
	"fmt"

	"resume-formatter/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PGStore keeps artifacts in the artifacts table created by the
// migration package.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	const q = `INSERT INTO artifacts (name, content, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET content = EXCLUDED.content, content_type = EXCLUDED.content_type, size = EXCLUDED.size`
	if _, err := s.pool.Exec(ctx, q, name, data, contentType, int64(len(data))); err != nil {
		return fmt.Errorf("insert artifact %s: %w", name, err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT content FROM artifacts WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewError("get", domain.ErrNotFound, "file not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("select artifact %s: %w", name, err)
	}
	return data, nil
}
