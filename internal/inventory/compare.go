package inventory

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Comparison aggregates company and supplier stock for one SKU.
type Comparison struct {
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	CompanyQuantity  int             `json:"companyQuantity"`
	SupplierQuantity int             `json:"supplierQuantity"`
	CompanyValue     decimal.Decimal `json:"companyValue"`
	SupplierValue    decimal.Decimal `json:"supplierValue"`
}

// ComparisonColumns are the table headers for comparisons.
var ComparisonColumns = []string{"SKU", "NAME", "COMPANY QTY", "SUPPLIER QTY", "DELTA", "COMPANY VALUE", "SUPPLIER VALUE"}

// Delta returns company minus supplier quantity.
func (c Comparison) Delta() int {
	return c.CompanyQuantity - c.SupplierQuantity
}

func (c Comparison) Row() []string {
	return []string{
		c.SKU, c.Name, strconv.Itoa(c.CompanyQuantity), strconv.Itoa(c.SupplierQuantity),
		strconv.Itoa(c.Delta()), c.CompanyValue.StringFixed(2), c.SupplierValue.StringFixed(2),
	}
}

// Compare groups both sides by SKU (falling back to ID) and returns rows sorted by SKU.
// The first non-empty name seen for a SKU is kept.
func Compare(company, supplier []StockItem) []Comparison {
	bySKU := make(map[string]*Comparison)
	row := func(it StockItem) *Comparison {
		key := it.SKU
		if key == "" {
			key = it.ID
		}
		c, ok := bySKU[key]
		if !ok {
			c = &Comparison{SKU: key, CompanyValue: decimal.Zero, SupplierValue: decimal.Zero}
			bySKU[key] = c
		}
		if c.Name == "" {
			c.Name = it.Name
		}
		return c
	}

	for _, it := range company {
		c := row(it)
		c.CompanyQuantity += it.Quantity
		c.CompanyValue = c.CompanyValue.Add(it.Value())
	}
	for _, it := range supplier {
		c := row(it)
		c.SupplierQuantity += it.Quantity
		c.SupplierValue = c.SupplierValue.Add(it.Value())
	}

	out := make([]Comparison, 0, len(bySKU))
	for _, c := range bySKU {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}
