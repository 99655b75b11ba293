package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/inventory"
	"github.com/rshade/stockdesk/internal/loader"
	"github.com/rshade/stockdesk/internal/logging"
	"github.com/rshade/stockdesk/internal/pagination"
	"github.com/rshade/stockdesk/internal/query"
)

// listOptions holds the flags shared by list-style commands.
type listOptions struct {
	search     string
	sort       string
	category   string
	output     string
	page       int
	pageSize   int
	maxVisible int
}

func (o *listOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.search, "search", "", "free-text search")
	cmd.Flags().StringVar(&o.sort, "sort", "", "sort as field or field:asc|desc (e.g. price:desc)")
	cmd.Flags().StringVar(&o.category, "category", "", "inventory category: company or supplier (default from config)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output format: table or json (default from config)")
	cmd.Flags().IntVar(&o.page, "page", pagination.MinPage, "page number (1-based)")
	cmd.Flags().IntVar(&o.pageSize, "page-size", 0, "items per page (default from config)")
	cmd.Flags().IntVar(&o.maxVisible, "max-visible", 0, "page numbers shown in the pager (default from config)")
}

// resolve fills unset options from cfg and validates them.
func (o *listOptions) resolve(cfg *config.Config) error {
	if o.output == "" {
		o.output = cfg.Output.DefaultFormat
	}
	if o.pageSize == 0 {
		o.pageSize = cfg.List.PageSize
	}
	if o.maxVisible == 0 {
		o.maxVisible = cfg.List.MaxVisible
	}
	if o.category == "" {
		o.category = string(cfg.List.Category)
	}

	if err := validateOutput(o.output); err != nil {
		return err
	}
	if err := pagination.ValidatePage(o.page); err != nil {
		return err
	}
	if err := pagination.ValidatePageSize(o.pageSize); err != nil {
		return err
	}
	if o.maxVisible < pagination.MinMaxVisible {
		return fmt.Errorf("--max-visible must be >= %d, got %d", pagination.MinMaxVisible, o.maxVisible)
	}
	return nil
}

// params builds the request parameters for resource.
func (o *listOptions) params(resource string) (query.Params, error) {
	by, err := pagination.ParseSort(o.sort)
	if err != nil {
		return query.Params{}, err
	}
	if err = validateSortField(resource, by); err != nil {
		return query.Params{}, err
	}

	p := query.Params{
		Page:       o.page,
		PageSize:   o.pageSize,
		SearchText: strings.TrimSpace(o.search),
		Sort:       by,
	}
	if resource == inventory.ResourceInventory {
		if p.Category, err = query.ParseCategory(o.category); err != nil {
			return query.Params{}, err
		}
	}
	return p, nil
}

func validateSortField(resource string, by pagination.Sort) error {
	switch resource {
	case inventory.ResourceOffers:
		return inventory.OfferSorter.Validate(by)
	case inventory.ResourceInventory:
		return inventory.StockSorter.Validate(by)
	default:
		return nil
	}
}

// NewListCmd creates the list command for paginated resource listings.
func NewListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a resource one page at a time",
		Long: `Fetches one page of a backend collection and prints it with a page-number strip.

Resources: ` + strings.Join(inventory.Resources(), ", "),
		Example: `  # First page of offers
  stockdesk list offers

  # Supplier inventory matching "cable", by quantity descending
  stockdesk list inventory --category supplier --search cable --sort quantity:desc

  # Page 4 as JSON
  stockdesk list transfers --page 4 -o json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: inventory.Resources(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], &opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runList(cmd *cobra.Command, resource string, opts *listOptions) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	if err := opts.resolve(cfg); err != nil {
		return err
	}
	p, err := opts.params(resource)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	switch resource {
	case inventory.ResourceOffers:
		return listResource[inventory.Offer](cmd, a, resource, inventory.OfferColumns, p, opts)
	case inventory.ResourceInventory:
		return listResource[inventory.StockItem](cmd, a, resource, inventory.StockColumns, p, opts)
	case inventory.ResourceTransfers:
		return listResource[inventory.Transfer](cmd, a, resource, inventory.TransferColumns, p, opts)
	case inventory.ResourcePurchaseOrders:
		return listResource[inventory.PurchaseOrder](cmd, a, resource, inventory.PurchaseOrderColumns, p, opts)
	default:
		return fmt.Errorf("unknown resource %q (valid: %s)", resource, strings.Join(inventory.Resources(), ", "))
	}
}

// listOutput is the JSON shape of a list result.
type listOutput[T any] struct {
	Resource   string          `json:"resource"`
	Items      []T             `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
	Pages      []string        `json:"pages"`
}

func listResource[T inventory.Tabular](
	cmd *cobra.Command,
	a *app,
	resource string,
	columns []string,
	p query.Params,
	opts *listOptions,
) error {
	ctx := cmd.Context()

	res, err := fetchPage[T](ctx, a, resource, p)
	if err != nil {
		return err
	}

	model := pagination.ComputePageModel(
		res.TotalCount, p.PageSize, p.Page, opts.maxVisible,
		pagination.WithSiblings(a.cfg.List.Siblings),
	)

	if opts.output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), listOutput[T]{
			Resource:   resource,
			Items:      res.Items,
			Pagination: model.Meta(),
			Pages:      model.Labels(),
		})
	}

	if len(res.Items) == 0 {
		cmd.Printf("No %s found.\n", resource)
		if res.TotalCount > 0 {
			renderPager(cmd.OutOrStdout(), model)
		}
		return nil
	}

	rows := make([][]string, 0, len(res.Items))
	for _, it := range res.Items {
		rows = append(rows, it.Row())
	}
	if err = renderTable(cmd.OutOrStdout(), columns, rows); err != nil {
		return err
	}
	cmd.Println()
	renderPager(cmd.OutOrStdout(), model)
	return nil
}

// fetchPage loads one page through a loader and waits for it.
func fetchPage[T any](ctx context.Context, a *app, resource string, p query.Params) (loader.Result[T], error) {
	l := loader.New[T](api.NewResourceFetcher[T](a.client, resource), a.creds)
	defer l.Close()

	l.Load(ctx, p)
	l.Wait()

	res := l.Result()
	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "cli").
		Str("operation", "fetch_page").
		Str("resource", resource).
		Int("page", p.Page).
		Int("items", len(res.Items)).
		Int("total", res.TotalCount).
		Msg("page loaded")

	if res.Err != nil {
		return res, describeError(res.Err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
