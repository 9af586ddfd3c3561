package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-app/config"
	"warehouse-app/models"
	"warehouse-app/routes"
)

type stateResponse struct {
	Products  []models.Product  `json:"products"`
	Receipts  []models.Receipt  `json:"receipts"`
	Shipments []models.Shipment `json:"shipments"`
}

type testClient struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, config.InitLogger("dev"))
	require.NoError(t, config.InitDB(filepath.Join(t.TempDir(), "warehouse_test.db")))

	router := gin.New()
	routes.RegisterRoutes(router)
	return &testClient{t: t, router: router}
}

func (tc *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}
	rec := httptest.NewRecorder()
	tc.router.ServeHTTP(rec, req)
	return rec
}

func (tc *testClient) login() {
	tc.t.Helper()
	rec := tc.do(http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "admin123"})
	require.Equal(tc.t, http.StatusOK, rec.Code, rec.Body.String())

	res := rec.Result()
	for _, cookie := range res.Cookies() {
		if cookie.Name == "warehouse_session" {
			tc.cookie = cookie
			return
		}
	}
	tc.t.Fatal("login response did not set the session cookie")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	tc := newTestClient(t)
	rec := tc.do(http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	tc := newTestClient(t)
	rec := tc.do(http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDraftAndShipmentFlow(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	state := decode[stateResponse](t, tc.do(http.MethodGet, "/api/state", nil))
	require.Len(t, state.Products, 3)

	var product models.Product
	for _, p := range state.Products {
		if p.SKU == "00044" {
			product = p
		}
	}
	require.NotEmpty(t, product.ID)
	require.Equal(t, 6, product.Stock)
	require.Equal(t, 65000.0, product.Price)

	// Reserve 4 of 6.
	rec := tc.do(http.MethodPost, "/api/draft/lines", gin.H{"productId": product.ID, "quantity": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 4 reserved + 7 requested exceeds stock.
	rec = tc.do(http.MethodPost, "/api/draft/lines", gin.H{"productId": product.ID, "quantity": 7})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	failure := decode[map[string]string](t, rec)
	assert.Equal(t, "insufficient_stock", failure["kind"])

	// Fractional quantities are rejected, not truncated.
	rec = tc.do(http.MethodPost, "/api/draft/lines", gin.H{"productId": product.ID, "quantity": 1.5})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	failure = decode[map[string]string](t, rec)
	assert.Equal(t, "invalid_quantity", failure["kind"])

	// Replace quantity and edit the price.
	rec = tc.do(http.MethodPatch, "/api/draft/lines/"+product.ID+"/quantity", gin.H{"quantity": 6})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = tc.do(http.MethodPatch, "/api/draft/lines/"+product.ID+"/price", gin.H{"price": 50000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	draft := decode[struct {
		Lines []models.ShipmentItem `json:"lines"`
		Total float64               `json:"total"`
	}](t, tc.do(http.MethodGet, "/api/draft", nil))
	require.Len(t, draft.Lines, 1)
	assert.Equal(t, 300000.0, draft.Total)

	// Commit the draft.
	rec = tc.do(http.MethodPost, "/api/shipments", gin.H{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	state = decode[stateResponse](t, rec)
	require.Len(t, state.Shipments, 1)
	assert.Equal(t, 300000.0, state.Shipments[0].Amount())
	for _, p := range state.Products {
		if p.ID == product.ID {
			assert.Equal(t, 0, p.Stock, "commit decrements stock")
		}
	}

	// The committed draft is gone.
	draft = decode[struct {
		Lines []models.ShipmentItem `json:"lines"`
		Total float64               `json:"total"`
	}](t, tc.do(http.MethodGet, "/api/draft", nil))
	assert.Empty(t, draft.Lines)

	// Revenue KPIs and series agree on the committed amount.
	totals := decode[map[string]float64](t, tc.do(http.MethodGet, "/api/dashboard/revenue", nil))
	assert.Equal(t, 300000.0, totals["dayTotal"])
	assert.Equal(t, 300000.0, totals["yearTotal"])

	series := decode[struct {
		Values []float64 `json:"values"`
		Total  float64   `json:"total"`
	}](t, tc.do(http.MethodGet, "/api/dashboard/chart?period=year", nil))
	require.Len(t, series.Values, 12)
	assert.Equal(t, 300000.0, series.Total)

	rec = tc.do(http.MethodGet, "/api/dashboard/chart.png?period=month", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	// Deleting the shipment restores stock.
	rec = tc.do(http.MethodDelete, "/api/shipments/"+state.Shipments[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state = decode[stateResponse](t, rec)
	assert.Empty(t, state.Shipments)
	for _, p := range state.Products {
		if p.ID == product.ID {
			assert.Equal(t, 6, p.Stock)
		}
	}
}

// Deleting a product must take its receipts and shipped lines with it,
// and shipments left without a single line must disappear from the
// history and the revenue figures.
func TestDeleteProductCascades(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	state := decode[stateResponse](t, tc.do(http.MethodGet, "/api/state", nil))
	bySKU := make(map[string]models.Product)
	for _, p := range state.Products {
		bySKU[p.SKU] = p
	}
	serum := bySKU["00047"]
	needle := bySKU["00030"]
	require.NotEmpty(t, serum.ID)
	require.NotEmpty(t, needle.ID)

	// First shipment holds only the serum.
	rec := tc.do(http.MethodPost, "/api/draft/lines", gin.H{"productId": serum.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = tc.do(http.MethodPost, "/api/shipments", gin.H{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Second shipment mixes the serum with the needle.
	rec = tc.do(http.MethodPost, "/api/draft/lines", gin.H{"productId": serum.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = tc.do(http.MethodPost, "/api/draft/lines", gin.H{"productId": needle.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = tc.do(http.MethodPost, "/api/shipments", gin.H{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	state = decode[stateResponse](t, rec)
	require.Len(t, state.Shipments, 2)

	totals := decode[map[string]float64](t, tc.do(http.MethodGet, "/api/dashboard/revenue", nil))
	require.Equal(t, 2000.0*3+600.0*3, totals["dayTotal"])

	rec = tc.do(http.MethodDelete, "/api/products/"+serum.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state = decode[stateResponse](t, rec)

	for _, p := range state.Products {
		assert.NotEqual(t, serum.ID, p.ID)
	}
	for _, r := range state.Receipts {
		assert.NotEqual(t, serum.ID, r.ProductID, "receipts of a deleted product are removed")
	}

	// The serum-only shipment is gone; the mixed one keeps its needle line.
	require.Len(t, state.Shipments, 1)
	require.Len(t, state.Shipments[0].Items, 1)
	assert.Equal(t, needle.ID, state.Shipments[0].Items[0].ProductID)
	assert.Equal(t, 1800.0, state.Shipments[0].Amount())

	totals = decode[map[string]float64](t, tc.do(http.MethodGet, "/api/dashboard/revenue", nil))
	assert.Equal(t, 1800.0, totals["dayTotal"])
	assert.Equal(t, 1800.0, totals["yearTotal"])
}

func TestEmptyDraftCommitRejected(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	rec := tc.do(http.MethodPost, "/api/shipments", gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	failure := decode[map[string]string](t, rec)
	assert.Equal(t, "empty_draft", failure["kind"])
}

func TestReceiptAdjustsStock(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	state := decode[stateResponse](t, tc.do(http.MethodGet, "/api/state", nil))
	product := state.Products[0]

	rec := tc.do(http.MethodPost, "/api/receipts", gin.H{"productId": product.ID, "quantity": 5, "cost": 100})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	state = decode[stateResponse](t, rec)
	for _, p := range state.Products {
		if p.ID == product.ID {
			assert.Equal(t, product.Stock+5, p.Stock)
			assert.Equal(t, 100.0, p.PurchasePrice)
		}
	}
}
