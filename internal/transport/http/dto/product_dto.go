package dto

import "time"

type ProductCreateRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	PriceKobo     *int64  `json:"price_kobo"`
	ImageMediaIDs []int64 `json:"image_media_ids"`
	ProductFileID *int64  `json:"product_file_id"`
}

type ProductUpdateRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	PriceKobo     *int64  `json:"price_kobo"`
	ImageMediaIDs []int64 `json:"image_media_ids"`
	ProductFileID *int64  `json:"product_file_id"`
}

type ProductResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	PriceKobo       *int64    `json:"price_kobo"`
	ApprovedForSale string    `json:"approved_for_sale"`
	ImageMediaIDs   []int64   `json:"image_media_ids,omitempty"`
	ProductFileID   *int64    `json:"product_file_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}
