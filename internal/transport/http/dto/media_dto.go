package dto

import "time"

type AssetResponse struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AssetListResponse struct {
	Assets []AssetResponse `json:"assets"`
}
