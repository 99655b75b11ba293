package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/stockdesk/internal/pagination"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	tabPadding  = 2
)

// printer is the locale-aware message printer for number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatNumber formats an integer with thousand separators, e.g. 18248 → "18,248".
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatMoney formats d rounded to cents with thousand separators, e.g. "1,234.50".
func FormatMoney(d decimal.Decimal) string {
	fixed := d.Round(2)
	intPart := fixed.Truncate(0)
	frac := fixed.Sub(intPart).Abs().StringFixed(2)

	sign := ""
	if fixed.IsNegative() && intPart.IsZero() {
		sign = "-"
	}
	return sign + printer.Sprintf("%d", intPart.IntPart()) + frac[1:]
}

func validateOutput(format string) error {
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("output must be table or json, got %q", format)
	}
	return nil
}

func renderTable(w io.Writer, columns []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	dashes := make([]string, len(columns))
	for i, c := range columns {
		dashes[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// renderPager prints "Page 2 of 6 (57 items)" and the page-number strip, with the
// current page in brackets.
func renderPager(w io.Writer, m pagination.PageModel) {
	labels := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		if !e.Ellipsis && e.Page == m.CurrentPage {
			labels = append(labels, "["+e.Label()+"]")
			continue
		}
		labels = append(labels, e.Label())
	}
	fmt.Fprintf(w, "Page %d of %d (%s items)  %s\n",
		m.CurrentPage, m.TotalPages, FormatNumber(m.TotalItems), strings.Join(labels, " "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
