package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kenogenyi/zikistorez/internal/domain/enums"
	"github.com/kenogenyi/zikistorez/internal/domain/model"
	catalogsvc "github.com/kenogenyi/zikistorez/internal/services/catalog"
	"github.com/kenogenyi/zikistorez/internal/transport/http/dto"
	httperrors "github.com/kenogenyi/zikistorez/internal/transport/http/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProductsHandler struct {
	service *catalogsvc.Service
}

func NewProductsHandler(service *catalogsvc.Service) *ProductsHandler {
	return &ProductsHandler{service: service}
}

func (h *ProductsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	limit, offset := pagination(r)
	products, err := h.service.ListPublic(r.Context(), limit, offset)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, productList(products))
}

func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	productID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid product id")
		return
	}

	product, err := h.service.Get(r.Context(), callerFromRequest(r), productID)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, productResponse(product))
}

func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	var req dto.ProductCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	product, err := h.service.Create(r.Context(), callerFromRequest(r), catalogsvc.CreateInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		PriceKobo:     req.PriceKobo,
		ImageMediaIDs: req.ImageMediaIDs,
		ProductFileID: req.ProductFileID,
	})
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, productResponse(product))
}

func (h *ProductsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	products, err := h.service.ListMine(r.Context(), callerFromRequest(r))
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, productList(products))
}

func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	productID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid product id")
		return
	}

	var req dto.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	product, err := h.service.Update(r.Context(), callerFromRequest(r), productID, catalogsvc.UpdateInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		PriceKobo:     req.PriceKobo,
		ImageMediaIDs: req.ImageMediaIDs,
		ProductFileID: req.ProductFileID,
	})
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, productResponse(product))
}

func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	productID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid product id")
		return
	}

	if err := h.service.Delete(r.Context(), callerFromRequest(r), productID); err != nil {
		handleCatalogError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, enums.ApprovalStatusApproved)
}

func (h *ProductsHandler) Deny(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, enums.ApprovalStatusDenied)
}

func (h *ProductsHandler) setApproval(w http.ResponseWriter, r *http.Request, status enums.ApprovalStatus) {
	if h.service == nil {
		writeInternal(w, "CATALOG_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	productID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid product id")
		return
	}

	product, err := h.service.SetApproval(r.Context(), callerFromRequest(r), productID, status)
	if err != nil {
		handleCatalogError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, productResponse(product))
}

func handleCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "product validation failed")
	case errors.Is(err, catalogsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "operation not allowed")
	case errors.Is(err, catalogsvc.ErrProductNotFound):
		writeNotFound(w, "PRODUCT_NOT_FOUND", "product not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxPageSize {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

func productResponse(product model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              product.ID,
		UserID:          product.UserID,
		Name:            product.Name,
		Description:     product.Description,
		Category:        product.Category,
		PriceKobo:       product.PriceKobo,
		ApprovedForSale: string(product.ApprovedForSale),
		ImageMediaIDs:   product.ImageMediaIDs,
		ProductFileID:   product.ProductFileID,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}

func productList(products []model.Product) dto.ProductListResponse {
	out := dto.ProductListResponse{Products: make([]dto.ProductResponse, 0, len(products))}
	for _, product := range products {
		out.Products = append(out.Products, productResponse(product))
	}
	return out
}
