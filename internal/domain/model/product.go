package model

import (
	"time"

	"github.com/kenogenyi/zikistorez/internal/domain/enums"
)

// PriceKobo is the listing price in currency minor units (kobo for NGN).
// A nil price means the product is not yet priced and cannot be sold.
type Product struct {
	ID                int64                `json:"id"`
	UserID            int64                `json:"user_id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	Category          string               `json:"category"`
	PriceKobo         *int64               `json:"price_kobo"`
	ApprovedForSale   enums.ApprovalStatus `json:"approved_for_sale"`
	PaystackProductID *string              `json:"-"`
	ImageMediaIDs     []int64              `json:"image_media_ids"`
	ProductFileID     *int64               `json:"product_file_id"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// MaxPriceKobo bounds the listing price to 1,000,000 NGN.
const MaxPriceKobo = int64(1_000_000 * 100)
