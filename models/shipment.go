package models

import "time"

// Shipment is a committed outbound document. It is immutable once
// created, except for deletion of the whole record.
type Shipment struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Items     []ShipmentItem `json:"items"`
}

// ShipmentItem keeps the price actually charged at commit time;
// historical amounts are never recomputed from current product prices.
type ShipmentItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
}

// Amount is the derived shipment total: the sum of its item amounts.
func (s Shipment) Amount() float64 {
	total := 0.0
	for _, item := range s.Items {
		total += item.Amount
	}
	return total
}
