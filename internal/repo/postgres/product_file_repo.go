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

var ErrProductFileNotFound = errors.New("product file not found")

type ProductFileRepo struct {
	pool *pgxpool.Pool
}

func NewProductFileRepo(pool *pgxpool.Pool) *ProductFileRepo {
	return &ProductFileRepo{pool: pool}
}

func (r *ProductFileRepo) Create(ctx context.Context, userID int64, objectKey, fileName string, sizeBytes int64) (model.ProductFile, error) {
	if r.pool == nil {
		return model.ProductFile{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(objectKey) == "" {
		return model.ProductFile{}, fmt.Errorf("invalid product file create payload")
	}

	var file model.ProductFile
	err := r.pool.QueryRow(ctx, `
INSERT INTO product_files (user_id, object_key, file_name, size_bytes, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id, user_id, object_key, file_name, size_bytes, created_at
`, userID, objectKey, fileName, sizeBytes).Scan(
		&file.ID,
		&file.UserID,
		&file.ObjectKey,
		&file.FileName,
		&file.SizeBytes,
		&file.CreatedAt,
	)
	if err != nil {
		return model.ProductFile{}, fmt.Errorf("create product file record: %w", err)
	}

	return file, nil
}

func (r *ProductFileRepo) FindByID(ctx context.Context, fileID int64) (model.ProductFile, error) {
	if r.pool == nil {
		return model.ProductFile{}, fmt.Errorf("postgres pool is nil")
	}
	if fileID <= 0 {
		return model.ProductFile{}, fmt.Errorf("invalid product file id")
	}

	var file model.ProductFile
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, object_key, file_name, size_bytes, created_at
FROM product_files
WHERE id = $1
LIMIT 1
`, fileID).Scan(
		&file.ID,
		&file.UserID,
		&file.ObjectKey,
		&file.FileName,
		&file.SizeBytes,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProductFile{}, ErrProductFileNotFound
		}
		return model.ProductFile{}, fmt.Errorf("find product file by id: %w", err)
	}

	return file, nil
}
