package inventory

import (
	"strings"

	"github.com/rshade/stockdesk/internal/pagination"
)

// Sort fields shared by the backend and the client-side sorters.
const (
	SortName     = "name"
	SortSKU      = "sku"
	SortPrice    = "price"
	SortQuantity = "quantity"
	SortValue    = "value"
	SortDelta    = "delta"
)

// OfferSorter sorts offers locally.
var OfferSorter = pagination.NewSorter(map[string]pagination.LessFunc[Offer]{
	SortName:     func(a, b Offer) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	SortSKU:      func(a, b Offer) bool { return a.SKU < b.SKU },
	SortPrice:    func(a, b Offer) bool { return a.Price.LessThan(b.Price) },
	SortQuantity: func(a, b Offer) bool { return a.Quantity < b.Quantity },
})

// StockSorter sorts inventory positions locally.
var StockSorter = pagination.NewSorter(map[string]pagination.LessFunc[StockItem]{
	SortName:     func(a, b StockItem) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	SortSKU:      func(a, b StockItem) bool { return a.SKU < b.SKU },
	SortPrice:    func(a, b StockItem) bool { return a.UnitCost.LessThan(b.UnitCost) },
	SortQuantity: func(a, b StockItem) bool { return a.Quantity < b.Quantity },
	SortValue:    func(a, b StockItem) bool { return a.Value().LessThan(b.Value()) },
})

// ComparisonSorter sorts comparison rows.
var ComparisonSorter = pagination.NewSorter(map[string]pagination.LessFunc[Comparison]{
	SortSKU:   func(a, b Comparison) bool { return a.SKU < b.SKU },
	SortName:  func(a, b Comparison) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	SortDelta: func(a, b Comparison) bool { return a.Delta() < b.Delta() },
	SortValue: func(a, b Comparison) bool {
		return a.CompanyValue.Add(a.SupplierValue).LessThan(b.CompanyValue.Add(b.SupplierValue))
	},
})

// SortFields returns the sort fields offered for resource, in cycling order.
func SortFields(resource string) []string {
	switch resource {
	case ResourceOffers:
		return []string{SortName, SortPrice, SortQuantity}
	case ResourceInventory:
		return []string{SortName, SortQuantity, SortValue}
	default:
		return []string{SortName}
	}
}
