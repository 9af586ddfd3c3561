package controllers

import (
	"database/sql"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"warehouse-app/config"
	"warehouse-app/middleware"
)

type printRow struct {
	Index       int
	ProductName string
	Quantity    int
	Price       float64
	Amount      float64
}

type printDocument struct {
	OrgName string
	DocNo   string
	Created string
	Rows    []printRow
	Total   float64
}

// PrintShipment renders the printable sales receipt for one shipment.
func PrintShipment(c *gin.Context) {
	authCtx := middleware.CurrentAuth(c)
	shipmentID := c.Param("id")

	var created string
	err := config.DB.QueryRow(
		"SELECT created_at FROM org_shipments WHERE id = ? AND org_id = ?",
		shipmentID, authCtx.OrgID,
	).Scan(&created)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Отгрузка не найдена"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows, err := config.DB.Query(`
		SELECT i.quantity, i.price, i.amount, COALESCE(p.name, 'Удаленный товар')
		FROM org_shipment_items i
		LEFT JOIN org_products p ON p.id = i.product_id
		WHERE i.shipment_id = ? AND i.org_id = ?
		ORDER BY i.id ASC
	`, shipmentID, authCtx.OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	doc := printDocument{OrgName: authCtx.OrgName, DocNo: shipmentID, Created: created}
	for rows.Next() {
		row := printRow{Index: len(doc.Rows) + 1}
		if err := rows.Scan(&row.Quantity, &row.Price, &row.Amount, &row.ProductName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		doc.Total += row.Amount
		doc.Rows = append(doc.Rows, row)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := printTemplate.Execute(c.Writer, doc); err != nil {
		config.Log.Errorw("render shipment print document", "shipment_id", shipmentID, "error", err)
	}
}

var printTemplate = template.Must(template.New("shipment-print").Parse(`<!doctype html>
<html lang="ru">
  <head>
    <meta charset="UTF-8" />
    <title>Товарный чек {{.DocNo}}</title>
    <style>
      @page { size: A4; margin: 14mm; }
      body { font-family: Arial, sans-serif; color: #1c2430; margin: 0; }
      .doc { width: 100%; }
      .head { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 14px; }
      .title { font-size: 28px; font-weight: 700; margin: 0 0 4px; }
      .meta { font-size: 13px; margin: 2px 0; color: #354656; }
      .line { border-top: 2px solid #0b75b4; margin: 10px 0 14px; }
      table { width: 100%; border-collapse: collapse; font-size: 13px; }
      th, td { border: 1px solid #cfdce8; padding: 8px; text-align: left; }
      th { background: #f3f8fc; }
      .num { width: 42px; text-align: center; }
      .qty { width: 80px; }
      .money { width: 140px; white-space: nowrap; }
      .total { margin-top: 14px; text-align: right; font-size: 22px; font-weight: 700; }
      .signs { margin-top: 36px; display: grid; grid-template-columns: 1fr 1fr; gap: 22px; font-size: 12px; color: #3b4e61; }
      .sign-line { margin-top: 34px; border-top: 1px solid #6f8397; padding-top: 5px; }
      @media print { .print-note { display: none; } }
      .print-note { margin-top: 12px; color: #5d6c79; font-size: 12px; }
    </style>
  </head>
  <body>
    <div class="doc">
      <div class="head">
        <div>
          <h1 class="title">Товарный чек</h1>
          <p class="meta">Организация: {{.OrgName}}</p>
          <p class="meta">Документ: Отгрузка № {{.DocNo}}</p>
          <p class="meta">Дата: {{.Created}}</p>
        </div>
      </div>
      <div class="line"></div>
      <table>
        <thead>
          <tr>
            <th class="num">№</th>
            <th>Наименование</th>
            <th class="qty">Кол-во</th>
            <th class="money">Цена</th>
            <th class="money">Сумма</th>
          </tr>
        </thead>
        <tbody>
          {{range .Rows}}
          <tr>
            <td>{{.Index}}</td>
            <td>{{.ProductName}}</td>
            <td>{{.Quantity}}</td>
            <td>{{printf "%.2f" .Price}}</td>
            <td>{{printf "%.2f" .Amount}}</td>
          </tr>
          {{else}}
          <tr><td colspan="5">Нет позиций</td></tr>
          {{end}}
        </tbody>
      </table>
      <div class="total">Итого: {{printf "%.2f" .Total}}</div>
      <div class="signs">
        <div><div class="sign-line">Отпустил(а)</div></div>
        <div><div class="sign-line">Получил(а)</div></div>
      </div>
      <div class="print-note">Окно печати откроется автоматически. В нем можно выбрать «Сохранить как PDF».</div>
    </div>
    <script>
      window.onload = function () {
        setTimeout(function () { window.print(); }, 120);
      };
    </script>
  </body>
</html>`))
