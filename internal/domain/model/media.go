package model

import "time"

type Media struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ObjectKey   string    `json:"-"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductFile is the downloadable asset a buyer receives after payment.
type ProductFile struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ObjectKey string    `json:"-"`
	FileName  string    `json:"file_name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
