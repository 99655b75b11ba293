package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/inventory"
	"github.com/rshade/stockdesk/internal/loader"
	"github.com/rshade/stockdesk/internal/query"
	"github.com/rshade/stockdesk/internal/tui"
)

// ErrNotTerminal is returned when browse is run without an interactive terminal.
var ErrNotTerminal = errors.New("browse requires an interactive terminal; use 'stockdesk list' instead")

// NewBrowseCmd creates the browse command, which opens the interactive list view.
func NewBrowseCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "browse <resource>",
		Short: "Browse a resource interactively",
		Long: `Opens an interactive list with search, sort, category toggle and paging.

Keys: / search, s cycle sort, c toggle category, ←/→ page, a add the selected row
to a cart (offers go to the offer list, inventory to the transfer basket),
r reload, q quit.`,
		Example: `  stockdesk browse offers
  stockdesk browse inventory --category supplier`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: inventory.Resources(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			return runBrowse(cmd, args[0], &opts)
		},
	}
	opts.bind(cmd)
	_ = cmd.Flags().MarkHidden("output")
	_ = cmd.Flags().MarkHidden("max-visible")

	return cmd
}

func runBrowse(cmd *cobra.Command, resource string, opts *listOptions) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	state, err := browseState(cfg, resource, opts)
	if err != nil {
		return err
	}
	defer state.Close()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	browseOpts := tui.BrowseOptions{
		Title:      strings.ToUpper(resource[:1]) + resource[1:],
		SortFields: inventory.SortFields(resource),
		MaxVisible: opts.maxVisible,
		Siblings:   cfg.List.Siblings,
	}

	switch resource {
	case inventory.ResourceOffers:
		if browseOpts.Cart, err = a.openCart(ctx, "offer-list"); err != nil {
			return err
		}
		browseOpts.Columns = inventory.OfferColumns
		return runBrowser[inventory.Offer](cmd, a, resource, state, browseOpts)
	case inventory.ResourceInventory:
		if browseOpts.Cart, err = a.openCart(ctx, "transfer"); err != nil {
			return err
		}
		browseOpts.Columns = inventory.StockColumns
		browseOpts.HasCategory = true
		return runBrowser[inventory.StockItem](cmd, a, resource, state, browseOpts)
	case inventory.ResourceTransfers:
		browseOpts.Columns = inventory.TransferColumns
		return runBrowser[inventory.Transfer](cmd, a, resource, state, browseOpts)
	case inventory.ResourcePurchaseOrders:
		browseOpts.Columns = inventory.PurchaseOrderColumns
		return runBrowser[inventory.PurchaseOrder](cmd, a, resource, state, browseOpts)
	default:
		return fmt.Errorf("unknown resource %q (valid: %s)", resource, strings.Join(inventory.Resources(), ", "))
	}
}

// browseState builds the query state a browser starts from. Only inventory carries a category.
func browseState(cfg *config.Config, resource string, opts *listOptions) (*query.State, error) {
	opts.output = outputTable
	if err := opts.resolve(cfg); err != nil {
		return nil, err
	}
	p, err := opts.params(resource)
	if err != nil {
		return nil, err
	}
	return query.New(query.WithDebounce(cfg.List.Debounce), query.WithParams(p)), nil
}

func runBrowser[T tui.Record](
	cmd *cobra.Command,
	a *app,
	resource string,
	state *query.State,
	opts tui.BrowseOptions,
) error {
	ctx := cmd.Context()

	l := loader.New[T](api.NewResourceFetcher[T](a.client, resource), a.creds)
	defer l.Close()

	m := tui.NewBrowseModel(ctx, state, l, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running browser: %w", err)
	}

	if opts.Cart != nil && opts.Cart.Count() > 0 {
		cmd.Printf("%s: %d lines, total %s\n",
			opts.Cart.Key(), opts.Cart.Count(), FormatMoney(opts.Cart.TotalValue()))
	}
	return nil
}

// Compile-time checks that cart-capable records satisfy tui.CartLine.
var (
	_ tui.CartLine = inventory.Offer{}
	_ tui.CartLine = inventory.StockItem{}
)
