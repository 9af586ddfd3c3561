package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-app/config"
	"warehouse-app/core"
	"warehouse-app/middleware"
	"warehouse-app/models"
)

var revenue = core.NewRevenueAggregator(time.Local)

// GetState returns the full org snapshot the dashboard renders from:
// products, receipts, shipments and the current identity.
func GetState(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	state, err := fetchState(authCtx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// respondWithState is the shared mutation response: the original API
// returns a fresh snapshot after every write.
func respondWithState(c *gin.Context, authCtx models.AuthContext, status int) {
	state, err := fetchState(authCtx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, state)
}

func fetchState(authCtx models.AuthContext) (gin.H, error) {
	products, err := listProducts(authCtx.OrgID)
	if err != nil {
		return nil, err
	}
	receipts, err := listReceipts(authCtx.OrgID)
	if err != nil {
		return nil, err
	}
	shipments, err := listShipments(authCtx.OrgID)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"products":  products,
		"receipts":  receipts,
		"shipments": shipments,
		"me":        authCtx,
	}, nil
}

func listProducts(orgID string) ([]models.Product, error) {
	rows, err := config.DB.Query(
		"SELECT id, name, sku, unit, price, stock, purchase_price FROM org_products WHERE org_id = ? ORDER BY created_at DESC",
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Unit, &p.Price, &p.Stock, &p.PurchasePrice); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func listReceipts(orgID string) ([]models.Receipt, error) {
	rows, err := config.DB.Query(
		"SELECT id, product_id, quantity, cost, created_at FROM org_receipts WHERE org_id = ? ORDER BY created_at DESC",
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []models.Receipt{}
	for rows.Next() {
		var (
			r       models.Receipt
			created string
		)
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Quantity, &r.Cost, &created); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = config.ParseTime(created); err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func listShipments(orgID string) ([]models.Shipment, error) {
	rows, err := config.DB.Query(
		"SELECT id, created_at FROM org_shipments WHERE org_id = ? ORDER BY created_at DESC",
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shipments := []models.Shipment{}
	for rows.Next() {
		var (
			s       models.Shipment
			created string
		)
		if err := rows.Scan(&s.ID, &created); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = config.ParseTime(created); err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range shipments {
		items, err := listShipmentItems(shipments[i].ID)
		if err != nil {
			return nil, err
		}
		shipments[i].Items = items
	}
	return shipments, nil
}

func listShipmentItems(shipmentID string) ([]models.ShipmentItem, error) {
	rows, err := config.DB.Query(
		"SELECT product_id, quantity, price, amount FROM org_shipment_items WHERE shipment_id = ? ORDER BY id ASC",
		shipmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ShipmentItem{}
	for rows.Next() {
		var item models.ShipmentItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// shipmentRecords flattens the org's shipments into what the aggregator
// consumes: instant plus committed amount.
func shipmentRecords(orgID string) ([]core.ShipmentRecord, error) {
	shipments, err := listShipments(orgID)
	if err != nil {
		return nil, err
	}
	records := make([]core.ShipmentRecord, 0, len(shipments))
	for _, s := range shipments {
		records = append(records, core.ShipmentRecord{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			Amount:    s.Amount(),
		})
	}
	return records, nil
}

// referenceNow honors an optional RFC3339 "now" query parameter, mostly
// useful for inspecting historical periods.
func referenceNow(c *gin.Context) time.Time {
	if raw := c.Query("now"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Now()
}

// GetRevenueTotals serves the day/month/year KPI cards.
func GetRevenueTotals(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	records, err := shipmentRecords(authCtx.OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, revenue.Totals(records, referenceNow(c)))
}

func chartPeriod(c *gin.Context) (core.Period, bool) {
	period := core.Period(c.DefaultQuery("period", string(core.PeriodMonth)))
	switch period {
	case core.PeriodDay, core.PeriodMonth, core.PeriodYear:
		return period, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный период. Допустимы day, month, year"})
		return "", false
	}
}

// GetChartSeries serves the bucketed revenue series as JSON.
func GetChartSeries(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	period, ok := chartPeriod(c)
	if !ok {
		return
	}
	records, err := shipmentRecords(authCtx.OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, revenue.Series(records, period, referenceNow(c)))
}

// GetChartPNG renders the same series as a PNG line chart.
func GetChartPNG(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	period, ok := chartPeriod(c)
	if !ok {
		return
	}
	records, err := shipmentRecords(authCtx.OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	width := chartDimension(c.Query("width"), 860)
	height := chartDimension(c.Query("height"), 320)
	png, err := core.RenderChartPNG(revenue.Series(records, period, referenceNow(c)), width, height)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func chartDimension(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 200 || v > 4000 {
		return fallback
	}
	return v
}
