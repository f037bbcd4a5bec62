package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenogenyi/zikistorez/internal/domain/model"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepo struct {
	pool *pgxpool.Pool
}

type OrderScope struct {
	OwnerID *int64
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, user_id, product_ids, is_paid, created_at, updated_at`

func (r *OrderRepo) Create(ctx context.Context, userID int64, productIDs []int64) (model.Order, error) {
	if r.pool == nil {
		return model.Order{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.Order{}, fmt.Errorf("invalid order create payload")
	}
	if productIDs == nil {
		productIDs = []int64{}
	}

	order, err := scanOrder(r.pool.QueryRow(ctx, `
INSERT INTO orders (user_id, product_ids, is_paid, created_at, updated_at)
VALUES ($1, $2, FALSE, NOW(), NOW())
RETURNING `+orderColumns+`
`, userID, productIDs))
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

func (r *OrderRepo) FindByID(ctx context.Context, orderID int64, scope OrderScope) (model.Order, error) {
	if r.pool == nil {
		return model.Order{}, fmt.Errorf("postgres pool is nil")
	}
	if orderID <= 0 {
		return model.Order{}, fmt.Errorf("invalid order id")
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	args := []any{orderID}
	if scope.OwnerID != nil {
		query += ` AND user_id = $2`
		args = append(args, *scope.OwnerID)
	}
	query += ` LIMIT 1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, ErrOrderNotFound
		}
		return model.Order{}, fmt.Errorf("find order by id: %w", err)
	}

	return order, nil
}

// MarkPaid flips the paid flag with a conditional update so a replayed
// webhook cannot transition the same order twice. The second return value
// reports whether this call performed the transition.
func (r *OrderRepo) MarkPaid(ctx context.Context, orderID int64) (model.Order, bool, error) {
	if r.pool == nil {
		return model.Order{}, false, fmt.Errorf("postgres pool is nil")
	}
	if orderID <= 0 {
		return model.Order{}, false, fmt.Errorf("invalid order id")
	}

	order, err := scanOrder(r.pool.QueryRow(ctx, `
UPDATE orders
SET is_paid = TRUE, updated_at = NOW()
WHERE id = $1
  AND is_paid = FALSE
RETURNING `+orderColumns+`
`, orderID))
	if err == nil {
		return order, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Order{}, false, fmt.Errorf("mark order paid: %w", err)
	}

	existing, err := r.FindByID(ctx, orderID, OrderScope{})
	if err != nil {
		return model.Order{}, false, err
	}
	if !existing.IsPaid {
		return model.Order{}, false, fmt.Errorf("order did not transition to paid")
	}

	return existing, false, nil
}

// HasPaidOrderWithProduct reports whether the user owns a paid order
// containing the product. Used to gate product-file downloads.
func (r *OrderRepo) HasPaidOrderWithProduct(ctx context.Context, userID, productID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || productID <= 0 {
		return false, fmt.Errorf("invalid paid order lookup payload")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM orders
	WHERE user_id = $1
	  AND is_paid = TRUE
	  AND $2 = ANY(product_ids)
)
`, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check paid order for product: %w", err)
	}

	return exists, nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var order model.Order
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.ProductIDs,
		&order.IsPaid,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return model.Order{}, err
	}

	if order.ProductIDs == nil {
		order.ProductIDs = []int64{}
	}
	return order, nil
}
