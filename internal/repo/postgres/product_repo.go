package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenogenyi/zikistorez/internal/domain/enums"
	"github.com/kenogenyi/zikistorez/internal/domain/model"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepo struct {
	pool *pgxpool.Pool
}

// Scope narrows reads to an owner when the caller's access decision demands it.
// A nil OwnerID means no narrowing.
type ProductScope struct {
	OwnerID *int64
}

type ProductCreate struct {
	UserID        int64
	Name          string
	Description   string
	Category      string
	PriceKobo     *int64
	ImageMediaIDs []int64
	ProductFileID *int64
}

type ProductUpdate struct {
	Name          *string
	Description   *string
	Category      *string
	PriceKobo     *int64
	ImageMediaIDs []int64
	ProductFileID *int64
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, user_id, name, description, category, price_kobo, approved_for_sale, paystack_product_id, image_media_ids, product_file_id, created_at, updated_at`

func (r *ProductRepo) Create(ctx context.Context, in ProductCreate) (model.Product, error) {
	if r.pool == nil {
		return model.Product{}, fmt.Errorf("postgres pool is nil")
	}
	if in.UserID <= 0 || strings.TrimSpace(in.Name) == "" {
		return model.Product{}, fmt.Errorf("invalid product create payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO products (
	user_id,
	name,
	description,
	category,
	price_kobo,
	approved_for_sale,
	image_media_ids,
	product_file_id,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, NOW(), NOW())
RETURNING `+productColumns+`
`, in.UserID, strings.TrimSpace(in.Name), in.Description, in.Category, in.PriceKobo, in.ImageMediaIDs, in.ProductFileID)

	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func (r *ProductRepo) FindByID(ctx context.Context, productID int64, scope ProductScope) (model.Product, error) {
	if r.pool == nil {
		return model.Product{}, fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 {
		return model.Product{}, fmt.Errorf("invalid product id")
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	args := []any{productID}
	if scope.OwnerID != nil {
		query += ` AND user_id = $2`
		args = append(args, *scope.OwnerID)
	}
	query += ` LIMIT 1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("find product by id: %w", err)
	}

	return product, nil
}

func (r *ProductRepo) FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(productIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE id = ANY($1)
ORDER BY id
`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepo) ListApproved(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE approved_for_sale = 'approved'
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list approved products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Product, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if ownerID <= 0 {
		return nil, fmt.Errorf("invalid owner id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE user_id = $1
ORDER BY created_at DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products by owner: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepo) Update(ctx context.Context, productID int64, scope ProductScope, in ProductUpdate) (model.Product, error) {
	if r.pool == nil {
		return model.Product{}, fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 {
		return model.Product{}, fmt.Errorf("invalid product id")
	}

	query := `
UPDATE products
SET
	name = COALESCE($2, name),
	description = COALESCE($3, description),
	category = COALESCE($4, category),
	price_kobo = COALESCE($5, price_kobo),
	image_media_ids = COALESCE($6, image_media_ids),
	product_file_id = COALESCE($7, product_file_id),
	updated_at = NOW()
WHERE id = $1`
	args := []any{productID, in.Name, in.Description, in.Category, in.PriceKobo, in.ImageMediaIDs, in.ProductFileID}
	if scope.OwnerID != nil {
		query += ` AND user_id = $8`
		args = append(args, *scope.OwnerID)
	}
	query += `
RETURNING ` + productColumns

	product, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID int64, scope ProductScope) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 {
		return fmt.Errorf("invalid product id")
	}

	query := `DELETE FROM products WHERE id = $1`
	args := []any{productID}
	if scope.OwnerID != nil {
		query += ` AND user_id = $2`
		args = append(args, *scope.OwnerID)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// SetProviderSync records the provider-side product identifier. Only the
// catalog service writes this; it is never exposed to clients.
func (r *ProductRepo) SetProviderSync(ctx context.Context, productID int64, providerID string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 || strings.TrimSpace(providerID) == "" {
		return fmt.Errorf("invalid provider sync payload")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE products
SET paystack_product_id = $2, updated_at = NOW()
WHERE id = $1
`, productID, strings.TrimSpace(providerID))
	if err != nil {
		return fmt.Errorf("set provider product id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *ProductRepo) SetApproval(ctx context.Context, productID int64, status enums.ApprovalStatus) (model.Product, error) {
	if r.pool == nil {
		return model.Product{}, fmt.Errorf("postgres pool is nil")
	}
	if productID <= 0 || !status.Valid() {
		return model.Product{}, fmt.Errorf("invalid approval payload")
	}

	product, err := scanProduct(r.pool.QueryRow(ctx, `
UPDATE products
SET approved_for_sale = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+productColumns+`
`, productID, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("set product approval: %w", err)
	}

	return product, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product  model.Product
		approval string
	)
	if err := row.Scan(
		&product.ID,
		&product.UserID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.PriceKobo,
		&approval,
		&product.PaystackProductID,
		&product.ImageMediaIDs,
		&product.ProductFileID,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	product.ApprovedForSale = enums.ApprovalStatus(approval)
	return product, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}
