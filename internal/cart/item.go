package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NoStockLimit marks an item whose available stock is unknown.
const NoStockLimit = -1

// LineItem is one entry of a cart.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Source    string          `json:"source,omitempty"`
	Category  string          `json:"category,omitempty"`
	// AvailableStock caps Quantity when set.
	AvailableStock *int `json:"availableStock,omitempty"`
}

// TotalValue returns Quantity * UnitPrice.
func (li LineItem) TotalValue() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Stock returns the available stock, or NoStockLimit when unknown.
func (li LineItem) Stock() int {
	if li.AvailableStock == nil {
		return NoStockLimit
	}
	return *li.AvailableStock
}

// Clamp limits q to [0, AvailableStock], or [0, ∞) when stock is unknown.
func (li LineItem) Clamp(q int) int {
	if q < 0 {
		return 0
	}
	if li.AvailableStock != nil && q > *li.AvailableStock {
		return max(*li.AvailableStock, 0)
	}
	return q
}

func (li LineItem) validate() error {
	if strings.TrimSpace(li.ID) == "" {
		return errorf("item id is required")
	}
	if li.UnitPrice.IsNegative() {
		return errorf("item %q has negative unit price %s", li.ID, li.UnitPrice)
	}
	if li.AvailableStock != nil && *li.AvailableStock < 0 {
		return errorf("item %q has negative available stock %d", li.ID, *li.AvailableStock)
	}
	return nil
}

// normalized returns li with its quantity clamped and a private copy of AvailableStock.
func (li LineItem) normalized() LineItem {
	if li.AvailableStock != nil {
		stock := *li.AvailableStock
		li.AvailableStock = &stock
	}
	li.Quantity = li.Clamp(li.Quantity)
	return li
}

// StockPtr returns a pointer to n, for building items with known stock.
func StockPtr(n int) *int {
	return &n
}
