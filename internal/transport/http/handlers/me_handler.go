package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/kenogenyi/zikistorez/internal/services/auth"
	userssvc "github.com/kenogenyi/zikistorez/internal/services/users"
	"github.com/kenogenyi/zikistorez/internal/transport/http/dto"
	httperrors "github.com/kenogenyi/zikistorez/internal/transport/http/errors"
)

type MeHandler struct {
	service *userssvc.Service
}

func NewMeHandler(service *userssvc.Service) *MeHandler {
	return &MeHandler{service: service}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	user, err := h.service.GetMe(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, userssvc.ErrNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "user not found")
		case errors.Is(err, userssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MeResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	})
}
