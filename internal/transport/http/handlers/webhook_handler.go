package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	paymentsvc "github.com/kenogenyi/zikistorez/internal/services/payments"
)

const (
	signatureHeader = "x-paystack-signature"
	maxWebhookBody  = 1 << 20
)

type WebhookHandler struct {
	service *paymentsvc.Service
	logger  *zap.Logger
}

func NewWebhookHandler(service *paymentsvc.Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, logger: logger}
}

func (h *WebhookHandler) Paystack(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "WEBHOOK_UNAVAILABLE", "webhook service is unavailable")
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "could not read request body")
		return
	}

	result, err := h.service.HandleEvent(r.Context(), rawBody, r.Header.Get(signatureHeader))
	if err != nil {
		h.handleError(w, err)
		return
	}

	if h.logger != nil && result.Transitioned {
		h.logger.Info("order reconciled as paid",
			zap.Int64("order_id", result.OrderID),
			zap.Int64("user_id", result.UserID),
		)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymentsvc.ErrInvalidSignature):
		writeBadRequest(w, "INVALID_SIGNATURE", "webhook signature verification failed")
	case errors.Is(err, paymentsvc.ErrMalformedPayload):
		writeBadRequest(w, "MALFORMED_PAYLOAD", "webhook payload could not be parsed")
	case errors.Is(err, paymentsvc.ErrMissingMetadata):
		writeBadRequest(w, "MISSING_METADATA", "webhook metadata is incomplete")
	case errors.Is(err, paymentsvc.ErrUserNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "webhook user not found")
	case errors.Is(err, paymentsvc.ErrOrderNotFound):
		writeNotFound(w, "ORDER_NOT_FOUND", "webhook order not found")
	case errors.Is(err, paymentsvc.ErrNotificationFailed):
		if h.logger != nil {
			h.logger.Error("receipt notification failed", zap.Error(err))
		}
		writeInternal(w, "NOTIFICATION_FAILED", "receipt email could not be sent")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
