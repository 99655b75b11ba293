package cart

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExportLine is a line item with its computed total.
type ExportLine struct {
	LineItem
	TotalValue decimal.Decimal `json:"totalValue"`
}

// Summary is a point-in-time view of a cart with aggregates, used for export
// and as the request body when a cart is submitted downstream.
type Summary struct {
	Key           string          `json:"key"`
	Items         []ExportLine    `json:"items"`
	Count         int             `json:"count"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// Summary returns the current lines and totals.
func (c *Cart) Summary() Summary {
	c.mu.Lock()
	items := cloneItems(c.items)
	c.mu.Unlock()

	s := Summary{Key: c.key, Items: make([]ExportLine, 0, len(items)), TotalValue: decimal.Zero}
	for _, li := range items {
		total := li.TotalValue()
		s.Items = append(s.Items, ExportLine{LineItem: li, TotalValue: total})
		s.TotalQuantity += li.Quantity
		s.TotalValue = s.TotalValue.Add(total)
	}
	s.Count = len(s.Items)
	return s
}

// Export writes the cart to w as CSV or indented JSON. CSV ends with a TOTAL row.
func (c *Cart) Export(w io.Writer, format string) error {
	s := c.Summary()

	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding cart: %w", err)
		}
		return nil

	case FormatCSV, "":
		cw := csv.NewWriter(w)
		rows := [][]string{{"id", "name", "source", "category", "quantity", "unit_price", "total_value"}}
		for _, l := range s.Items {
			rows = append(rows, []string{
				l.ID,
				l.Name,
				l.Source,
				l.Category,
				strconv.Itoa(l.Quantity),
				l.UnitPrice.StringFixed(2),
				l.TotalValue.StringFixed(2),
			})
		}
		rows = append(rows, []string{"TOTAL", "", "", "", strconv.Itoa(s.TotalQuantity), "", s.TotalValue.StringFixed(2)})
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("writing cart csv: %w", err)
		}
		return nil

	default:
		return errorf("unsupported export format %q (use csv or json)", format)
	}
}
