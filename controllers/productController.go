package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"warehouse-app/config"
	"warehouse-app/middleware"
	"warehouse-app/models"
)

type productPayload struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Unit          string  `json:"unit"`
	Price         float64 `json:"price"`
	Stock         float64 `json:"stock"`
	PurchasePrice float64 `json:"purchasePrice"`
}

// CreateProduct adds a product to the organization's catalog. Non-zero
// initial stock is recorded as a matching receipt.
func CreateProduct(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)

	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название обязательно"})
		return
	}
	sku := strings.TrimSpace(payload.SKU)
	if sku == "" {
		sku = "AUTO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	}
	unit := strings.TrimSpace(payload.Unit)
	if unit == "" {
		unit = "шт"
	}
	price := max(0, payload.Price)
	stock := int(max(0, payload.Stock))
	purchase := max(0, payload.PurchasePrice)

	productID := models.NewID("p")
	_, err := config.DB.Exec(
		"INSERT INTO org_products (id, org_id, name, sku, unit, price, stock, purchase_price, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		productID, authCtx.OrgID, name, sku, unit, price, stock, purchase, config.FormatTime(time.Now()),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stock > 0 {
		_, err = config.DB.Exec(
			"INSERT INTO org_receipts (id, org_id, product_id, quantity, cost, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			models.NewID("r"), authCtx.OrgID, productID, stock, purchase, config.FormatTime(time.Now()),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	respondWithState(c, authCtx, http.StatusCreated)
}

// UpdateProductPrice changes only the sale price.
func UpdateProductPrice(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	productID := c.Param("id")

	var payload struct {
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}

	result, err := config.DB.Exec(
		"UPDATE org_products SET price = ? WHERE id = ? AND org_id = ?",
		max(0, payload.Price), productID, authCtx.OrgID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Товар не найден"})
		return
	}

	respondWithState(c, authCtx, http.StatusOK)
}

// UpdateProduct renames a product and sets its sale price.
func UpdateProduct(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	productID := c.Param("id")

	var payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название товара обязательно"})
		return
	}

	result, err := config.DB.Exec(
		"UPDATE org_products SET name = ?, price = ? WHERE id = ? AND org_id = ?",
		name, max(0, payload.Price), productID, authCtx.OrgID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Товар не найден"})
		return
	}

	respondWithState(c, authCtx, http.StatusOK)
}

// DeleteProduct removes the product, its receipts and shipment items
// (cascade), then garbage-collects shipments left without items.
func DeleteProduct(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	productID := c.Param("id")

	result, err := config.DB.Exec(
		"DELETE FROM org_products WHERE id = ? AND org_id = ?",
		productID, authCtx.OrgID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Товар не найден"})
		return
	}

	_, err = config.DB.Exec(`
		DELETE FROM org_shipments WHERE id IN (
			SELECT s.id FROM org_shipments s
			LEFT JOIN org_shipment_items i ON i.shipment_id = s.id
			WHERE s.org_id = ?
			GROUP BY s.id
			HAVING COUNT(i.id) = 0
		)
	`, authCtx.OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	respondWithState(c, authCtx, http.StatusOK)
}
