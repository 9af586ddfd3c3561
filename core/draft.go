package core

import (
	"errors"
	"math"
)

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyDraft        = errors.New("draft has no lines")
)

// ProductInfo is the slice of a product the ledger needs for
// reservation checks and default pricing.
type ProductInfo struct {
	ID    string
	Name  string
	Price float64
	Stock int
}

// ProductSource resolves a product id to its current state. The ledger
// calls it on every operation, so stock changes between operations are
// picked up by the next check.
type ProductSource interface {
	Product(id string) (ProductInfo, bool)
}

// DraftLine is one staged shipment position. A draft holds at most one
// line per product; repeated reservations merge by quantity.
type DraftLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
}

// CommitLine is the submission shape for one validated draft line.
type CommitLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// DraftLedger stages a shipment being composed by one operator.
// Invariant: the quantity reserved for any product never exceeds that
// product's current stock. Every failed operation leaves the ledger
// unchanged. Not safe for concurrent use; each operator session owns
// exactly one instance.
type DraftLedger struct {
	products ProductSource
	lines    []*DraftLine
	index    map[string]*DraftLine
}

func NewDraftLedger(products ProductSource) *DraftLedger {
	return &DraftLedger{
		products: products,
		index:    make(map[string]*DraftLine),
	}
}

// IntQuantity converts a quantity received as a JSON number into an
// integer count. Fractional values are rejected outright rather than
// truncated, and values outside the int32 range (including NaN and
// the infinities) are rejected before conversion.
func IntQuantity(raw float64) (int, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || math.Abs(raw) > math.MaxInt32 {
		return 0, ErrInvalidQuantity
	}
	if raw != math.Trunc(raw) {
		return 0, ErrInvalidQuantity
	}
	return int(raw), nil
}

// Reserve adds quantity units of the product to the draft. If a line
// for the product already exists its quantity grows and the amount is
// recomputed from the line's own price; a new line takes the product's
// current sale price as default.
func (d *DraftLedger) Reserve(productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	product, ok := d.products.Product(productID)
	if !ok {
		return ErrUnknownProduct
	}

	reserved := 0
	if line, ok := d.index[productID]; ok {
		reserved = line.Quantity
	}
	if quantity > product.Stock-reserved {
		return ErrInsufficientStock
	}

	if line, ok := d.index[productID]; ok {
		line.Quantity += quantity
		line.Amount = float64(line.Quantity) * line.Price
		return nil
	}

	line := &DraftLine{
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.Price,
		Amount:    float64(quantity) * product.Price,
	}
	d.lines = append(d.lines, line)
	d.index[productID] = line
	return nil
}

// SetQuantity replaces the line's quantity outright. The new value is
// checked directly against current stock since this is a replace, not
// an increment.
func (d *DraftLedger) SetQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	line, ok := d.index[productID]
	if !ok {
		return ErrUnknownProduct
	}
	product, ok := d.products.Product(productID)
	if !ok {
		return ErrUnknownProduct
	}
	if quantity > product.Stock {
		return ErrInsufficientStock
	}
	line.Quantity = quantity
	line.Amount = float64(quantity) * line.Price
	return nil
}

// SetPrice replaces the line's unit price. Price is independent of
// stock, so reservation accounting is untouched.
func (d *DraftLedger) SetPrice(productID string, price float64) error {
	if price < 0 {
		return ErrInvalidPrice
	}
	line, ok := d.index[productID]
	if !ok {
		return ErrUnknownProduct
	}
	line.Price = price
	line.Amount = float64(line.Quantity) * price
	return nil
}

// RemoveLine deletes the line for the product. Removing an absent line
// is a no-op, not an error.
func (d *DraftLedger) RemoveLine(productID string) {
	if _, ok := d.index[productID]; !ok {
		return
	}
	delete(d.index, productID)
	for i, line := range d.lines {
		if line.ProductID == productID {
			d.lines = append(d.lines[:i], d.lines[i+1:]...)
			break
		}
	}
}

// Clear empties the draft after a successful commit.
func (d *DraftLedger) Clear() {
	d.lines = nil
	d.index = make(map[string]*DraftLine)
}

// Lines returns a copy of the staged lines in insertion order.
func (d *DraftLedger) Lines() []DraftLine {
	out := make([]DraftLine, 0, len(d.lines))
	for _, line := range d.lines {
		out = append(out, *line)
	}
	return out
}

func (d *DraftLedger) Len() int {
	return len(d.lines)
}

// TotalAmount sums all line amounts; 0 for an empty draft.
func (d *DraftLedger) TotalAmount() float64 {
	total := 0.0
	for _, line := range d.lines {
		total += line.Amount
	}
	return total
}

// CommitPayload produces the ordered submission list. An empty draft
// cannot be committed.
func (d *DraftLedger) CommitPayload() ([]CommitLine, error) {
	if len(d.lines) == 0 {
		return nil, ErrEmptyDraft
	}
	payload := make([]CommitLine, 0, len(d.lines))
	for _, line := range d.lines {
		payload = append(payload, CommitLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return payload, nil
}
