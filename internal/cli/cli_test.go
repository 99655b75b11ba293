package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/cli"
	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/pagination"
)

const testToken = "tok"

// backend is a fake dashboard API.
type backend struct {
	mu        sync.Mutex
	queries   []string
	transfers []map[string]any
}

func (b *backend) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"message":"token expired"}`)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /api/offers", auth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()

		offers := make([]map[string]any, 0, 23)
		for i := 1; i <= 23; i++ {
			name := fmt.Sprintf("Offer %d", i)
			if q := r.URL.Query().Get("q"); q != "" && !strings.Contains(name, q) {
				continue
			}
			offers = append(offers, map[string]any{
				"id": fmt.Sprintf("o-%d", i), "sku": fmt.Sprintf("SKU-%d", i), "name": name,
				"supplier": "Acme", "price": "1.50", "quantity": i,
			})
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		writeTestJSON(w, map[string]any{
			"items":      pagination.SlicePage(offers, page, limit),
			"totalCount": len(offers),
		})
	}))

	mux.HandleFunc("GET /api/inventory", auth(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("inventoryType") {
		case "supplier":
			writeTestJSON(w, []map[string]any{
				{"id": "s1", "sku": "A", "name": "Alpha", "inventoryType": "supplier", "quantity": 3, "unitCost": "2"},
				{"id": "s2", "sku": "C", "name": "Gamma", "inventoryType": "supplier", "quantity": 4, "unitCost": "1"},
			})
		default:
			writeTestJSON(w, []map[string]any{
				{"id": "c1", "sku": "A", "name": "Alpha", "inventoryType": "company", "quantity": 5, "unitCost": "2"},
				{"id": "c2", "sku": "B", "name": "Beta", "inventoryType": "company", "quantity": 2, "unitCost": "10"},
			})
		}
	}))

	mux.HandleFunc("POST /api/transfers", auth(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.transfers = append(b.transfers, body)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeTestJSON(w, map[string]any{"id": "t-1"})
	}))

	return mux
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// setup points the CLI at a fake backend and an isolated home directory.
func setup(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	t.Setenv("STOCKDESK_HOME", t.TempDir())
	t.Setenv("STOCKDESK_API_URL", srv.URL)
	t.Setenv("STOCKDESK_TOKEN", testToken)
	t.Setenv("STOCKDESK_LOG_LEVEL", "error")
	t.Setenv("STOCKDESK_STORAGE_BACKEND", "")
	t.Cleanup(config.ResetGlobalConfigForTest)
	return b
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListOffersTable(t *testing.T) {
	setup(t)

	out, err := run(t, "list", "offers", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "o-11")
	assert.Contains(t, out, "o-20")
	assert.NotContains(t, out, "o-21 ")
	assert.Contains(t, out, "Page 2 of 3 (23 items)  1 [2] 3")
}

func TestListOffersJSON(t *testing.T) {
	b := setup(t)

	out, err := run(t, "list", "offers", "--page", "3", "--search", "Offer 2", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Resource   string           `json:"resource"`
		Items      []map[string]any `json:"items"`
		Pagination pagination.Meta  `json:"pagination"`
		Pages      []string         `json:"pages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "offers", got.Resource)
	// "Offer 2" and "Offer 20".."Offer 23": five matches, one page.
	assert.Equal(t, 5, got.Pagination.TotalItems)
	assert.Equal(t, 1, got.Pagination.TotalPages)
	assert.Equal(t, []string{"1"}, got.Pages)

	require.NotEmpty(t, b.queries)
	assert.Contains(t, b.queries[0], "q=Offer+2")
}

func TestListValidation(t *testing.T) {
	setup(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "bad sort field", args: []string{"list", "offers", "--sort", "color"}, wantErr: pagination.ErrInvalidSortField},
		{name: "bad sort order", args: []string{"list", "offers", "--sort", "price:up"}, wantErr: pagination.ErrInvalidSortOrder},
		{name: "bad page", args: []string{"list", "offers", "--page", "0"}, wantErr: pagination.ErrInvalidPage},
		{name: "bad page size", args: []string{"list", "offers", "--page-size", "5000"}, wantErr: pagination.ErrInvalidPageSize},
		{name: "bad output", args: []string{"list", "offers", "-o", "xml"}, wantMsg: "output must be table or json"},
		{name: "unknown resource", args: []string{"list", "widgets"}, wantMsg: "unknown resource"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestListRequiresLogin(t *testing.T) {
	setup(t)
	t.Setenv("STOCKDESK_TOKEN", "")

	_, err := run(t, "list", "offers")
	require.ErrorIs(t, err, api.ErrAuthRequired)
	assert.Contains(t, err.Error(), "stockdesk login")

	out, err := run(t, "login", "--token", testToken)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in")

	_, err = run(t, "list", "offers")
	require.NoError(t, err)

	_, err = run(t, "logout")
	require.NoError(t, err)

	_, err = run(t, "list", "offers")
	require.ErrorIs(t, err, api.ErrAuthRequired)
}

func TestListExpiredToken(t *testing.T) {
	setup(t)
	t.Setenv("STOCKDESK_TOKEN", "stale")

	_, err := run(t, "list", "offers")
	require.ErrorIs(t, err, api.ErrAuthRequired)
	require.ErrorIs(t, err, api.ErrServer)
	assert.Contains(t, err.Error(), "token expired")
	assert.Contains(t, err.Error(), "session expired")
}

func TestLoginRequiresToken(t *testing.T) {
	setup(t)

	_, err := run(t, "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--token is required")
}

func TestCompare(t *testing.T) {
	setup(t)

	out, err := run(t, "compare", "--sort", "delta:asc")
	require.NoError(t, err)

	c := strings.Index(out, "Gamma")
	a := strings.Index(out, "Alpha")
	bIdx := strings.Index(out, "Beta")
	require.True(t, c >= 0 && a >= 0 && bIdx >= 0, out)
	assert.Less(t, c, a, "delta -4 sorts before +2")
	assert.Contains(t, out, "Page 1 of 1 (3 items)")

	out, err = run(t, "compare", "--search", "alp", "-o", "json")
	require.NoError(t, err)
	var got struct {
		Items []struct {
			SKU              string `json:"sku"`
			CompanyQuantity  int    `json:"companyQuantity"`
			SupplierQuantity int    `json:"supplierQuantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "A", got.Items[0].SKU)
	assert.Equal(t, 5, got.Items[0].CompanyQuantity)
	assert.Equal(t, 3, got.Items[0].SupplierQuantity)
}

func TestPages(t *testing.T) {
	setup(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "ellipsis both sides", args: []string{"pages", "--total", "120", "--page", "6"}, want: "1 ... 5 [6] 7 ... 12"},
		{name: "all pages fit", args: []string{"pages", "--total", "57", "--page", "4"}, want: "1 2 3 [4] 5 6"},
		{name: "clamped page", args: []string{"pages", "--total", "30", "--page", "9"}, want: "Page 3 of 3"},
		{name: "empty", args: []string{"pages", "--total", "0"}, want: "No items."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCartLifecycle(t *testing.T) {
	setup(t)

	out, err := run(t, "cart", "add", "o-1", "--name", "Bolt", "--price", "50", "--qty", "40", "--stock", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Added o-1: quantity 40, total 2,000.00")

	out, err = run(t, "cart", "set-qty", "o-1", "150")
	require.NoError(t, err)
	assert.Contains(t, out, "Quantity clamped to 100")
	assert.Contains(t, out, "total 5,000.00")

	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Bolt")
	assert.Contains(t, out, "Lines: 1  Units: 100  Total: 5,000.00")

	out, err = run(t, "cart", "export", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "id,name,source,category,quantity,unit_price,total_value")
	assert.Contains(t, out, "TOTAL,,,,100,,5000.00")

	out, err = run(t, "cart", "set-qty", "o-1", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "o-1: quantity 0, total 0.00")

	out, err = run(t, "cart", "remove", "o-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed o-1")

	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty.")
}

func TestCartUnknownName(t *testing.T) {
	setup(t)

	_, err := run(t, "cart", "show", "--cart", "wishlist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cart")
}

func TestCartSubmitTransfer(t *testing.T) {
	b := setup(t)

	_, err := run(t, "cart", "submit")
	require.Error(t, err, "empty basket cannot be submitted")

	_, err = run(t, "cart", "--cart", "transfer", "add", "c1", "--name", "Alpha", "--qty", "3", "--stock", "5")
	require.NoError(t, err)

	out, err := run(t, "cart", "submit", "--from", "WH1", "--to", "WH2")
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted transfer with 1 lines.")

	require.Len(t, b.transfers, 1)
	assert.Equal(t, "WH1", b.transfers[0]["from"])
	items, ok := b.transfers[0]["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	line, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c1", line["itemId"])
	assert.InDelta(t, 3, line["quantity"], 0)

	out, err = run(t, "cart", "--cart", "transfer", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty.")
}

func TestConfigCommands(t *testing.T) {
	setup(t)

	out, err := run(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Storage backend: file")

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url:")
	assert.Contains(t, out, "page_size: 10")
}

func TestInvalidConfigRejected(t *testing.T) {
	setup(t)
	t.Setenv("STOCKDESK_PAGE_SIZE", "0")

	_, err := run(t, "pages", "--total", "10")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBrowseRequiresTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	setup(t)

	_, err := run(t, "browse", "offers")
	require.ErrorIs(t, err, cli.ErrNotTerminal)
}
