package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kenogenyi/zikistorez/internal/domain/enums"
	"github.com/kenogenyi/zikistorez/internal/domain/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailConflict = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, email, passwordHash string, role enums.Role) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || passwordHash == "" || !role.Valid() {
		return model.User{}, fmt.Errorf("invalid user create payload")
	}

	var (
		user    model.User
		roleRaw string
	)
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, role, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
RETURNING id, email, password_hash, role, created_at, updated_at
`, email, passwordHash, string(role)).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&roleRaw,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, ErrEmailConflict
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	user.Role = enums.Role(roleRaw)
	return user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}

	return r.scanOne(r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, role, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1
`, userID))
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return model.User{}, fmt.Errorf("email is required")
	}

	return r.scanOne(r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, role, created_at, updated_at
FROM users
WHERE email = $1
LIMIT 1
`, email))
}

func (r *UserRepo) scanOne(row pgx.Row) (model.User, error) {
	var (
		user    model.User
		roleRaw string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&roleRaw,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}

	user.Role = enums.Role(roleRaw)
	return user, nil
}
