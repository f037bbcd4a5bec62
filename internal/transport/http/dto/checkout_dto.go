package dto

type CheckoutRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

type CheckoutResponse struct {
	OrderID   int64  `json:"order_id"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
}

type OrderStatusResponse struct {
	OrderID int64 `json:"order_id"`
	IsPaid  bool  `json:"is_paid"`
}
