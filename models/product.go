package models

type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Unit          string  `json:"unit"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	PurchasePrice float64 `json:"purchasePrice"`
}
