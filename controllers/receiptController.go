package controllers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-app/config"
	"warehouse-app/middleware"
	"warehouse-app/models"
)

// CreateReceipt records an inbound delivery: stock grows by the
// quantity and a positive cost becomes the new purchase price.
func CreateReceipt(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)

	var payload struct {
		ProductID string  `json:"productId"`
		Quantity  float64 `json:"quantity"`
		Cost      float64 `json:"cost"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}

	productID := strings.TrimSpace(payload.ProductID)
	quantity := int(payload.Quantity)
	cost := max(0, payload.Cost)
	if productID == "" || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные приемки"})
		return
	}

	var existing string
	err := config.DB.QueryRow(
		"SELECT id FROM org_products WHERE id = ? AND org_id = ?",
		productID, authCtx.OrgID,
	).Scan(&existing)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Товар не найден"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	_, err = config.DB.Exec(
		"UPDATE org_products SET stock = stock + ?, purchase_price = CASE WHEN ? > 0 THEN ? ELSE purchase_price END WHERE id = ? AND org_id = ?",
		quantity, cost, cost, productID, authCtx.OrgID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	_, err = config.DB.Exec(
		"INSERT INTO org_receipts (id, org_id, product_id, quantity, cost, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		models.NewID("r"), authCtx.OrgID, productID, quantity, cost, config.FormatTime(time.Now()),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	respondWithState(c, authCtx, http.StatusCreated)
}

// DeleteReceipt undoes a delivery. The stock decrement is clamped at
// zero since later shipments may already have consumed the goods.
func DeleteReceipt(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	receiptID := c.Param("id")

	var (
		productID string
		quantity  int
	)
	err := config.DB.QueryRow(
		"SELECT product_id, quantity FROM org_receipts WHERE id = ? AND org_id = ?",
		receiptID, authCtx.OrgID,
	).Scan(&productID, &quantity)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Приемка не найдена"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	_, err = config.DB.Exec(
		"UPDATE org_products SET stock = CASE WHEN stock - ? < 0 THEN 0 ELSE stock - ? END WHERE id = ? AND org_id = ?",
		quantity, quantity, productID, authCtx.OrgID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	_, err = config.DB.Exec(
		"DELETE FROM org_receipts WHERE id = ? AND org_id = ?",
		receiptID, authCtx.OrgID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	respondWithState(c, authCtx, http.StatusOK)
}
