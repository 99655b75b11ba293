package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/inventory"
	"github.com/rshade/stockdesk/internal/pagination"
	"github.com/rshade/stockdesk/internal/query"
)

func TestFormatNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{18248, "18,248"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestFormatMoney(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"5000", "5,000.00"},
		{"1234.5", "1,234.50"},
		{"0.125", "0.13"},
		{"-0.5", "-0.50"},
		{"-1234.56", "-1,234.56"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestRenderTable(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, []string{"ID", "NAME"}, [][]string{{"1", "Bolt"}, {"22", "Hex nut"}}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "ID  NAME", string(bytes.TrimRight(lines[0], " ")))
	assert.Equal(t, "--  ----", string(bytes.TrimRight(lines[1], " ")))
	assert.Equal(t, "22  Hex nut", string(lines[3]))
}

func TestRenderPager(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	renderPager(&buf, pagination.ComputePageModel(12345, 10, 6, 7))
	assert.Equal(t, "Page 6 of 1235 (12,345 items)  1 ... 5 [6] 7 ... 1235\n", buf.String())
}

func TestFilterComparisons(t *testing.T) {
	t.Parallel()
	rows := []inventory.Comparison{
		{SKU: "BOLT-1", Name: "Hex bolt"},
		{SKU: "NUT-1", Name: "Hex nut"},
		{SKU: "WASH-1", Name: "Washer"},
	}

	assert.Len(t, FilterComparisons(context.Background(), rows, ""), 3)
	assert.Len(t, FilterComparisons(context.Background(), rows, "hex"), 2)
	assert.Len(t, FilterComparisons(context.Background(), rows, "wash"), 1)
	assert.Empty(t, FilterComparisons(context.Background(), rows, "gear"))
}

func TestBrowseState_CategoryOnlyForInventory(t *testing.T) {
	t.Setenv("STOCKDESK_HOME", t.TempDir())
	cfg := config.New()

	for _, resource := range []string{inventory.ResourceOffers, inventory.ResourceTransfers, inventory.ResourcePurchaseOrders} {
		state, err := browseState(cfg, resource, &listOptions{page: 1})
		require.NoError(t, err)
		p := state.Params()
		state.Close()

		assert.Empty(t, p.Category, resource)
		assert.False(t, p.Values().Has(query.ParamInventoryType), resource)
	}

	state, err := browseState(cfg, inventory.ResourceInventory, &listOptions{page: 1, category: "supplier"})
	require.NoError(t, err)
	defer state.Close()
	assert.Equal(t, query.CategorySupplier, state.Params().Category)
	assert.Equal(t, "supplier", state.Params().Values().Get(query.ParamInventoryType))
}
