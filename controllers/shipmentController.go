package controllers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-app/auth"
	"warehouse-app/config"
	"warehouse-app/core"
	"warehouse-app/middleware"
	"warehouse-app/models"
)

// dbProductSource backs the draft ledger with live product rows, so
// every reservation check sees the stock of that moment.
type dbProductSource struct {
	orgID string
}

func (s dbProductSource) Product(id string) (core.ProductInfo, bool) {
	var p core.ProductInfo
	err := config.DB.QueryRow(
		"SELECT id, name, price, stock FROM org_products WHERE id = ? AND org_id = ?",
		id, s.orgID,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		return core.ProductInfo{}, false
	}
	return p, true
}

// draftStore owns one draft ledger per session. The ledger itself is
// single-operator state; the mutex only guards the map.
type draftStore struct {
	mu      sync.Mutex
	entries map[string]*draftEntry
}

type draftEntry struct {
	ledger  *core.DraftLedger
	touched time.Time
}

var drafts = &draftStore{entries: make(map[string]*draftEntry)}

// get returns the session's ledger, creating one on first use. Entries
// untouched for a full session TTL belong to sessions that expired
// server-side and are swept here, since no logout will ever drop them.
func (s *draftStore) get(token, orgID string) *core.DraftLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for key, entry := range s.entries {
		if now.Sub(entry.touched) > auth.SessionTTL {
			delete(s.entries, key)
		}
	}
	entry, ok := s.entries[token]
	if !ok {
		entry = &draftEntry{ledger: core.NewDraftLedger(dbProductSource{orgID: orgID})}
		s.entries[token] = entry
	}
	entry.touched = now
	return entry.ledger
}

func (s *draftStore) drop(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

func sessionDraft(c *gin.Context) *core.DraftLedger {
	authCtx := middleware.CurrentAuth(c)
	return drafts.get(authCtx.Token, authCtx.OrgID)
}

// draftError maps a core failure onto an HTTP response with a
// machine-readable kind and the operator-facing message.
func draftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"kind": "unknown_product", "error": "Товар не найден"})
	case errors.Is(err, core.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_quantity", "error": "Некорректное количество"})
	case errors.Is(err, core.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "invalid_price", "error": "Некорректная цена"})
	case errors.Is(err, core.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "insufficient_stock", "error": "Недостаточно товара на складе"})
	case errors.Is(err, core.ErrEmptyDraft):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "empty_draft", "error": "Добавьте хотя бы одну позицию"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func draftJSON(ledger *core.DraftLedger) gin.H {
	return gin.H{"lines": ledger.Lines(), "total": ledger.TotalAmount()}
}

// GetDraft returns the session's staged shipment lines.
func GetDraft(c *gin.Context) {
	c.JSON(http.StatusOK, draftJSON(sessionDraft(c)))
}

// AddDraftLine reserves stock for a product in the session draft.
func AddDraftLine(c *gin.Context) {
	var payload struct {
		ProductID string  `json:"productId"`
		Quantity  float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}

	quantity, err := core.IntQuantity(payload.Quantity)
	if err != nil {
		draftError(c, err)
		return
	}
	ledger := sessionDraft(c)
	if err := ledger.Reserve(strings.TrimSpace(payload.ProductID), quantity); err != nil {
		draftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftJSON(ledger))
}

// SetDraftLineQuantity replaces a line's quantity outright.
func SetDraftLineQuantity(c *gin.Context) {
	var payload struct {
		Quantity float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}

	quantity, err := core.IntQuantity(payload.Quantity)
	if err != nil {
		draftError(c, err)
		return
	}
	ledger := sessionDraft(c)
	if err := ledger.SetQuantity(c.Param("productId"), quantity); err != nil {
		draftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftJSON(ledger))
}

// SetDraftLinePrice replaces a line's unit price.
func SetDraftLinePrice(c *gin.Context) {
	var payload struct {
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}

	ledger := sessionDraft(c)
	if err := ledger.SetPrice(c.Param("productId"), payload.Price); err != nil {
		draftError(c, err)
		return
	}
	c.JSON(http.StatusOK, draftJSON(ledger))
}

// RemoveDraftLine drops one staged line; absent lines are a no-op.
func RemoveDraftLine(c *gin.Context) {
	ledger := sessionDraft(c)
	ledger.RemoveLine(c.Param("productId"))
	c.JSON(http.StatusOK, draftJSON(ledger))
}

// DiscardDraft throws the staged shipment away.
func DiscardDraft(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	drafts.drop(authCtx.Token)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type shipmentItemPayload struct {
	ProductID string   `json:"productId"`
	Quantity  float64  `json:"quantity"`
	Price     *float64 `json:"price"`
}

// CreateShipment commits a shipment. With an explicit items array the
// request is validated through a fresh ledger (the original API shape);
// without one the session draft is committed. Stock decrement and item
// insertion happen in one transaction.
func CreateShipment(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)

	var payload struct {
		Items []shipmentItemPayload `json:"items"`
	}
	// A bodyless request commits the session draft.
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных"})
		return
	}

	var (
		lines     []core.CommitLine
		fromDraft bool
		draft     = drafts.get(authCtx.Token, authCtx.OrgID)
	)
	if len(payload.Items) > 0 {
		validation := core.NewDraftLedger(dbProductSource{orgID: authCtx.OrgID})
		for _, item := range payload.Items {
			quantity, err := core.IntQuantity(item.Quantity)
			if err != nil {
				draftError(c, err)
				return
			}
			if err := validation.Reserve(strings.TrimSpace(item.ProductID), quantity); err != nil {
				draftError(c, err)
				return
			}
			if item.Price != nil {
				if err := validation.SetPrice(strings.TrimSpace(item.ProductID), *item.Price); err != nil {
					draftError(c, err)
					return
				}
			}
		}
		var err error
		lines, err = validation.CommitPayload()
		if err != nil {
			draftError(c, err)
			return
		}
	} else {
		var err error
		lines, err = draft.CommitPayload()
		if err != nil {
			draftError(c, err)
			return
		}
		fromDraft = true
	}

	if err := insertShipment(authCtx.OrgID, lines); err != nil {
		draftError(c, err)
		return
	}

	if fromDraft {
		draft.Clear()
		drafts.drop(authCtx.Token)
	}
	respondWithState(c, authCtx, http.StatusCreated)
}

// insertShipment applies a validated payload transactionally: stock is
// re-checked and decremented row by row, items are written with the
// amount actually charged.
func insertShipment(orgID string, lines []core.CommitLine) error {
	tx, err := config.DB.Begin()
	if err != nil {
		return err
	}

	shipmentID := models.NewID("s")
	_, err = tx.Exec(
		"INSERT INTO org_shipments (id, org_id, created_at) VALUES (?, ?, ?)",
		shipmentID, orgID, config.FormatTime(time.Now()),
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, line := range lines {
		var stock int
		err = tx.QueryRow(
			"SELECT stock FROM org_products WHERE id = ? AND org_id = ?",
			line.ProductID, orgID,
		).Scan(&stock)
		if err == sql.ErrNoRows {
			tx.Rollback()
			return core.ErrUnknownProduct
		}
		if err != nil {
			tx.Rollback()
			return err
		}
		if stock < line.Quantity {
			tx.Rollback()
			return core.ErrInsufficientStock
		}

		amount := float64(line.Quantity) * line.Price
		_, err = tx.Exec(
			"UPDATE org_products SET stock = stock - ? WHERE id = ? AND org_id = ?",
			line.Quantity, line.ProductID, orgID,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
		_, err = tx.Exec(
			"INSERT INTO org_shipment_items (shipment_id, org_id, product_id, quantity, price, amount) VALUES (?, ?, ?, ?, ?, ?)",
			shipmentID, orgID, line.ProductID, line.Quantity, line.Price, amount,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// DeleteShipment removes a shipment and returns its goods to stock.
func DeleteShipment(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	shipmentID := c.Param("id")

	var existing string
	err := config.DB.QueryRow(
		"SELECT id FROM org_shipments WHERE id = ? AND org_id = ?",
		shipmentID, authCtx.OrgID,
	).Scan(&existing)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Отгрузка не найдена"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tx, err := config.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows, err := tx.Query(
		"SELECT product_id, quantity FROM org_shipment_items WHERE shipment_id = ? AND org_id = ?",
		shipmentID, authCtx.OrgID,
	)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	type restock struct {
		productID string
		quantity  int
	}
	var restocks []restock
	for rows.Next() {
		var r restock
		if err := rows.Scan(&r.productID, &r.quantity); err != nil {
			rows.Close()
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		restocks = append(restocks, r)
	}
	rows.Close()

	for _, r := range restocks {
		_, err = tx.Exec(
			"UPDATE org_products SET stock = stock + ? WHERE id = ? AND org_id = ?",
			r.quantity, r.productID, authCtx.OrgID,
		)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if _, err = tx.Exec(
		"DELETE FROM org_shipments WHERE id = ? AND org_id = ?",
		shipmentID, authCtx.OrgID,
	); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err = tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	respondWithState(c, authCtx, http.StatusOK)
}
