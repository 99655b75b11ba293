// Package inventory defines the records served by the dashboard backend and how they
// become cart line items and table rows.
package inventory

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rshade/stockdesk/internal/cart"
	"github.com/rshade/stockdesk/internal/query"
)

// Backend resource names.
const (
	ResourceOffers         = "offers"
	ResourceInventory      = "inventory"
	ResourceTransfers      = "transfers"
	ResourcePurchaseOrders = "purchase-orders"
)

// Resources lists the resources that can be listed, in display order.
func Resources() []string {
	return []string{ResourceOffers, ResourceInventory, ResourceTransfers, ResourcePurchaseOrders}
}

// Tabular is implemented by records that render as table rows.
type Tabular interface {
	Row() []string
}

// Offer is a supplier offer that can be collected into the offer list.
type Offer struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Supplier  string          `json:"supplier"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Status    string          `json:"status,omitempty"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`
}

// OfferColumns are the table headers for offers.
var OfferColumns = []string{"ID", "SKU", "NAME", "SUPPLIER", "PRICE", "QTY", "STATUS"}

func (o Offer) Row() []string {
	return []string{o.ID, o.SKU, o.Name, o.Supplier, o.Price.StringFixed(2), strconv.Itoa(o.Quantity), o.Status}
}

// LineItem converts o to an offer-list line of quantity one, capped by the offered quantity.
func (o Offer) LineItem() cart.LineItem {
	return cart.LineItem{
		ID:             o.ID,
		Name:           o.Name,
		Quantity:       1,
		UnitPrice:      o.Price,
		Source:         ResourceOffers,
		Category:       string(query.CategorySupplier),
		AvailableStock: cart.StockPtr(max(o.Quantity, 0)),
	}
}

// StockItem is one inventory position owned by the company or a supplier.
type StockItem struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  query.Category  `json:"inventoryType"`
	Location  string          `json:"location,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	UpdatedAt time.Time       `json:"updatedAt,omitzero"`
}

// StockColumns are the table headers for inventory.
var StockColumns = []string{"ID", "SKU", "NAME", "TYPE", "LOCATION", "QTY", "UNIT COST", "VALUE"}

func (s StockItem) Row() []string {
	return []string{
		s.ID, s.SKU, s.Name, string(s.Category), s.Location,
		strconv.Itoa(s.Quantity), s.UnitCost.StringFixed(2), s.Value().StringFixed(2),
	}
}

// Value returns Quantity * UnitCost.
func (s StockItem) Value() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// LineItem converts s to a transfer line of quantity one, capped by the quantity on hand.
func (s StockItem) LineItem() cart.LineItem {
	return cart.LineItem{
		ID:             s.ID,
		Name:           s.Name,
		Quantity:       1,
		UnitPrice:      s.UnitCost,
		Source:         ResourceInventory,
		Category:       string(s.Category),
		AvailableStock: cart.StockPtr(max(s.Quantity, 0)),
	}
}

// TransferLine is one SKU moved by a transfer.
type TransferLine struct {
	ItemID   string `json:"itemId"`
	SKU      string `json:"sku,omitempty"`
	Quantity int    `json:"quantity"`
}

// Transfer moves stock between locations.
type Transfer struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Status    string         `json:"status"`
	Lines     []TransferLine `json:"items"`
	CreatedAt time.Time      `json:"createdAt,omitzero"`
}

// TransferColumns are the table headers for transfers.
var TransferColumns = []string{"ID", "FROM", "TO", "STATUS", "LINES", "UNITS", "CREATED"}

func (t Transfer) Row() []string {
	units := 0
	for _, l := range t.Lines {
		units += l.Quantity
	}
	return []string{t.ID, t.From, t.To, t.Status, strconv.Itoa(len(t.Lines)), strconv.Itoa(units), formatDate(t.CreatedAt)}
}

// TransferRequest is the body posted to create a transfer from a cart.
type TransferRequest struct {
	From  string         `json:"from,omitempty"`
	To    string         `json:"to,omitempty"`
	Lines []TransferLine `json:"items"`
}

// NewTransferRequest builds a transfer request from cart lines. Lines with zero quantity are skipped.
func NewTransferRequest(from, to string, items []cart.LineItem) TransferRequest {
	req := TransferRequest{From: from, To: to, Lines: make([]TransferLine, 0, len(items))}
	for _, li := range items {
		if li.Quantity == 0 {
			continue
		}
		req.Lines = append(req.Lines, TransferLine{ItemID: li.ID, Quantity: li.Quantity})
	}
	return req
}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID        string          `json:"id"`
	Supplier  string          `json:"supplier"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`
}

// PurchaseOrderColumns are the table headers for purchase orders.
var PurchaseOrderColumns = []string{"ID", "SUPPLIER", "STATUS", "TOTAL", "CREATED"}

func (p PurchaseOrder) Row() []string {
	return []string{p.ID, p.Supplier, p.Status, p.Total.StringFixed(2), formatDate(p.CreatedAt)}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
