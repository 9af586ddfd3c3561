package models

import "time"

// Receipt is one inbound stock delivery for a product.
type Receipt struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"createdAt"`
}
