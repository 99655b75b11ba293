package inventory_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/cart"
	"github.com/rshade/stockdesk/internal/inventory"
	"github.com/rshade/stockdesk/internal/pagination"
	"github.com/rshade/stockdesk/internal/query"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOffer_DecodeAndConvert(t *testing.T) {
	t.Parallel()

	body := `{"items":[{"id":"o-1","sku":"SKU-1","name":"Bolt","supplier":"Acme","price":"0.25","quantity":400,"status":"open"}],"totalCount":1}`
	page, err := api.DecodePage[inventory.Offer]([]byte(body))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	o := page.Items[0]
	assert.Equal(t, []string{"o-1", "SKU-1", "Bolt", "Acme", "0.25", "400", "open"}, o.Row())

	li := o.LineItem()
	assert.Equal(t, "o-1", li.ID)
	assert.Equal(t, 1, li.Quantity)
	assert.Equal(t, inventory.ResourceOffers, li.Source)
	assert.Equal(t, "supplier", li.Category)
	assert.Equal(t, 400, li.Stock())
	assert.True(t, dec("0.25").Equal(li.UnitPrice))
}

func TestOffer_NumericPriceDecodes(t *testing.T) {
	t.Parallel()

	page, err := api.DecodePage[inventory.Offer]([]byte(`[{"id":"o-2","price":12.5,"quantity":1}]`))
	require.NoError(t, err)
	assert.Equal(t, "12.50", page.Items[0].Row()[4])
}

func TestStockItem_ValueAndLineItem(t *testing.T) {
	t.Parallel()

	s := inventory.StockItem{
		ID: "s-1", SKU: "SKU-9", Name: "Nut", Category: query.CategoryCompany,
		Location: "WH1", Quantity: 40, UnitCost: dec("50"),
		UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2000", s.Value().String())
	assert.Equal(t, []string{"s-1", "SKU-9", "Nut", "company", "WH1", "40", "50.00", "2000.00"}, s.Row())

	li := s.LineItem()
	assert.Equal(t, "company", li.Category)
	assert.Equal(t, 40, li.Stock())
	assert.Equal(t, inventory.ResourceInventory, li.Source)

	var round inventory.StockItem
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, query.CategoryCompany, round.Category)
}

func TestTransfer_Row(t *testing.T) {
	t.Parallel()

	tr := inventory.Transfer{
		ID: "t-1", From: "WH1", To: "WH2", Status: "pending",
		Lines: []inventory.TransferLine{{ItemID: "a", Quantity: 3}, {ItemID: "b", Quantity: 4}},
	}
	assert.Equal(t, []string{"t-1", "WH1", "WH2", "pending", "2", "7", "-"}, tr.Row())
}

func TestNewTransferRequest_SkipsZeroQuantity(t *testing.T) {
	t.Parallel()

	req := inventory.NewTransferRequest("WH1", "WH2", []cart.LineItem{
		{ID: "a", Quantity: 2},
		{ID: "b", Quantity: 0},
	})
	assert.Equal(t, []inventory.TransferLine{{ItemID: "a", Quantity: 2}}, req.Lines)
}

func TestPurchaseOrder_Row(t *testing.T) {
	t.Parallel()

	po := inventory.PurchaseOrder{
		ID: "po-1", Supplier: "Acme", Status: "approved", Total: dec("99.9"),
		CreatedAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, []string{"po-1", "Acme", "approved", "99.90", "2026-03-04"}, po.Row())
}

func TestCompare(t *testing.T) {
	t.Parallel()

	company := []inventory.StockItem{
		{ID: "1", SKU: "B", Name: "Beta", Quantity: 5, UnitCost: dec("2")},
		{ID: "2", SKU: "A", Name: "Alpha", Quantity: 1, UnitCost: dec("10")},
		{ID: "3", SKU: "B", Quantity: 2, UnitCost: dec("2")},
	}
	supplier := []inventory.StockItem{
		{ID: "9", SKU: "A", Name: "Alpha (supplier)", Quantity: 4, UnitCost: dec("9")},
		{ID: "10", Name: "No SKU", Quantity: 3, UnitCost: dec("1")},
	}

	rows := inventory.Compare(company, supplier)
	require.Len(t, rows, 3)

	assert.Equal(t, "10", rows[0].SKU)
	assert.Equal(t, 0, rows[0].CompanyQuantity)
	assert.Equal(t, 3, rows[0].SupplierQuantity)

	assert.Equal(t, "A", rows[1].SKU)
	assert.Equal(t, "Alpha", rows[1].Name)
	assert.Equal(t, -3, rows[1].Delta())
	assert.Equal(t, "36", rows[1].SupplierValue.String())

	assert.Equal(t, "B", rows[2].SKU)
	assert.Equal(t, 7, rows[2].CompanyQuantity)
	assert.Equal(t, "14", rows[2].CompanyValue.String())
	assert.Equal(t, []string{"B", "Beta", "7", "0", "7", "14.00", "0.00"}, rows[2].Row())
}

func TestSorters(t *testing.T) {
	t.Parallel()

	items := []inventory.StockItem{
		{ID: "1", Name: "pear", Quantity: 3, UnitCost: dec("1")},
		{ID: "2", Name: "Apple", Quantity: 1, UnitCost: dec("5")},
		{ID: "3", Name: "fig", Quantity: 2, UnitCost: dec("1")},
	}

	byName := inventory.StockSorter.Sort(items, pagination.Sort{Field: inventory.SortName, Order: pagination.SortOrderAsc})
	assert.Equal(t, []string{"2", "3", "1"}, ids(byName))

	byValue := inventory.StockSorter.Sort(items, pagination.Sort{Field: inventory.SortValue, Order: pagination.SortOrderDesc})
	assert.Equal(t, []string{"2", "1", "3"}, ids(byValue))

	require.Error(t, inventory.StockSorter.Validate(pagination.Sort{Field: "color"}))
	assert.Equal(t, []string{"name", "price", "quantity"}, inventory.SortFields(inventory.ResourceOffers))
}

func ids(items []inventory.StockItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
