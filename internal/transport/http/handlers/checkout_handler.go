package handlers

import (
	"errors"
	"net/http"

	checkoutsvc "github.com/kenogenyi/zikistorez/internal/services/checkout"
	"github.com/kenogenyi/zikistorez/internal/transport/http/dto"
	httperrors "github.com/kenogenyi/zikistorez/internal/transport/http/errors"
)

type CheckoutHandler struct {
	service *checkoutsvc.Service
}

func NewCheckoutHandler(service *checkoutsvc.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHECKOUT_UNAVAILABLE", "checkout service is unavailable")
		return
	}

	var req dto.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	session, err := h.service.CreateSession(r.Context(), callerFromRequest(r), req.ProductIDs)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CheckoutResponse{
		OrderID:   session.OrderID,
		URL:       session.AuthorizationURL,
		Reference: session.Reference,
	})
}

func (h *CheckoutHandler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHECKOUT_UNAVAILABLE", "checkout service is unavailable")
		return
	}

	orderID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid order id")
		return
	}

	status, err := h.service.PollOrderStatus(r.Context(), callerFromRequest(r), orderID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OrderStatusResponse{
		OrderID: status.OrderID,
		IsPaid:  status.IsPaid,
	})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkoutsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "checkout validation failed")
	case errors.Is(err, checkoutsvc.ErrOrderNotFound):
		writeNotFound(w, "ORDER_NOT_FOUND", "order not found")
	case errors.Is(err, checkoutsvc.ErrPaymentInit):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "PAYMENT_INIT_FAILED",
			Message: "payment session could not be created",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
