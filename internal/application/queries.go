package application

import (
	"time"
)

type PageMapSummary struct {
	Name        string `json:"name"`
	HasLastPage bool   `json:"has_last_page"`
}

type SessionSummary struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	PageMaps  []PageMapSummary `json:"page_maps"`
}
