package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/kenogenyi/zikistorez/internal/domain/model"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
	"github.com/kenogenyi/zikistorez/internal/services/access"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
	ErrForbidden  = errors.New("forbidden")
)

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

func (s *Service) GetMe(ctx context.Context, callerID int64) (model.User, error) {
	if callerID <= 0 {
		return model.User{}, ErrValidation
	}
	if s.users == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	user, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Get loads an arbitrary user record subject to access decisions: standard
// callers only see themselves.
func (s *Service) Get(ctx context.Context, caller access.Caller, userID int64) (model.User, error) {
	decision := access.UsersRead(caller)
	if !decision.Allowed() {
		return model.User{}, ErrForbidden
	}
	if decision.OwnerScope() && userID != caller.UserID {
		return model.User{}, ErrForbidden
	}
	return s.GetMe(ctx, userID)
}
