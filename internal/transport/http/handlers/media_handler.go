package handlers

import (
	"errors"
	"net/http"

	mediasvc "github.com/kenogenyi/zikistorez/internal/services/media"
	"github.com/kenogenyi/zikistorez/internal/transport/http/dto"
	httperrors "github.com/kenogenyi/zikistorez/internal/transport/http/errors"
)

const (
	maxImageUploadSize = 20 << 20  // 20 MiB
	maxFileUploadSize  = 200 << 20 // 200 MiB
)

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) ImageUpload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadSize)
	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	asset, err := h.service.UploadImage(r.Context(), callerFromRequest(r), header.Filename, contentType, file, header.Size)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, assetResponse(asset))
}

func (h *MediaHandler) ImageURL(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	mediaID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid media id")
		return
	}

	asset, err := h.service.ImageURL(r.Context(), callerFromRequest(r), mediaID)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, assetResponse(asset))
}

func (h *MediaHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	assets, err := h.service.ListMyImages(r.Context(), callerFromRequest(r))
	if err != nil {
		handleMediaError(w, err)
		return
	}

	out := dto.AssetListResponse{Assets: make([]dto.AssetResponse, 0, len(assets))}
	for _, asset := range assets {
		out.Assets = append(out.Assets, assetResponse(asset))
	}
	httperrors.Write(w, http.StatusOK, out)
}

func (h *MediaHandler) FileUpload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFileUploadSize)
	if err := r.ParseMultipartForm(maxFileUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	asset, err := h.service.UploadProductFile(r.Context(), callerFromRequest(r), header.Filename, file, header.Size)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, assetResponse(asset))
}

func (h *MediaHandler) ProductFileURL(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	productID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid product id")
		return
	}

	asset, err := h.service.ProductFileURL(r.Context(), callerFromRequest(r), productID)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, assetResponse(asset))
}

func assetResponse(asset mediasvc.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:        asset.ID,
		FileName:  asset.FileName,
		URL:       asset.URL,
		CreatedAt: asset.CreatedAt,
	}
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "media validation failed")
	case errors.Is(err, mediasvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "operation not allowed")
	case errors.Is(err, mediasvc.ErrMediaNotFound):
		writeNotFound(w, "MEDIA_NOT_FOUND", "media not found")
	case errors.Is(err, mediasvc.ErrFileNotFound):
		writeNotFound(w, "FILE_NOT_FOUND", "product file not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
