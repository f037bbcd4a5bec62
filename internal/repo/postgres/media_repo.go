package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenogenyi/zikistorez/internal/domain/model"
)

var ErrMediaNotFound = errors.New("media not found")

type MediaRepo struct {
	pool *pgxpool.Pool
}

func NewMediaRepo(pool *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{pool: pool}
}

func (r *MediaRepo) Create(ctx context.Context, userID int64, objectKey, fileName, contentType string, sizeBytes int64) (model.Media, error) {
	if r.pool == nil {
		return model.Media{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(objectKey) == "" {
		return model.Media{}, fmt.Errorf("invalid media create payload")
	}

	var media model.Media
	err := r.pool.QueryRow(ctx, `
INSERT INTO media (user_id, object_key, file_name, content_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, user_id, object_key, file_name, content_type, size_bytes, created_at
`, userID, objectKey, fileName, contentType, sizeBytes).Scan(
		&media.ID,
		&media.UserID,
		&media.ObjectKey,
		&media.FileName,
		&media.ContentType,
		&media.SizeBytes,
		&media.CreatedAt,
	)
	if err != nil {
		return model.Media{}, fmt.Errorf("create media record: %w", err)
	}

	return media, nil
}

func (r *MediaRepo) FindByID(ctx context.Context, mediaID int64) (model.Media, error) {
	if r.pool == nil {
		return model.Media{}, fmt.Errorf("postgres pool is nil")
	}
	if mediaID <= 0 {
		return model.Media{}, fmt.Errorf("invalid media id")
	}

	var media model.Media
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, object_key, file_name, content_type, size_bytes, created_at
FROM media
WHERE id = $1
LIMIT 1
`, mediaID).Scan(
		&media.ID,
		&media.UserID,
		&media.ObjectKey,
		&media.FileName,
		&media.ContentType,
		&media.SizeBytes,
		&media.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Media{}, ErrMediaNotFound
		}
		return model.Media{}, fmt.Errorf("find media by id: %w", err)
	}

	return media, nil
}

func (r *MediaRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Media, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if ownerID <= 0 {
		return nil, fmt.Errorf("invalid owner id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, object_key, file_name, content_type, size_bytes, created_at
FROM media
WHERE user_id = $1
ORDER BY created_at DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list media by owner: %w", err)
	}
	defer rows.Close()

	var out []model.Media
	for rows.Next() {
		var media model.Media
		if err := rows.Scan(
			&media.ID,
			&media.UserID,
			&media.ObjectKey,
			&media.FileName,
			&media.ContentType,
			&media.SizeBytes,
			&media.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan media row: %w", err)
		}
		out = append(out, media)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media rows: %w", err)
	}

	return out, nil
}
