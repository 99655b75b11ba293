package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/inventory"
	"github.com/rshade/stockdesk/internal/pagination"
	"github.com/rshade/stockdesk/internal/query"
)

// compareFetchSize is the page size used to pull each side of a comparison.
const compareFetchSize = pagination.MaxPageSize

// NewCompareCmd creates the compare command, which lines up company and supplier
// inventory by SKU.
func NewCompareCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare company and supplier inventory by SKU",
		Long: `Fetches company and supplier inventory concurrently, groups both by SKU and
prints quantities, values and the company-minus-supplier delta.

Search, sort and paging apply to the comparison rows.`,
		Example: `  # Largest shortfalls first
  stockdesk compare --sort delta:asc

  # Only SKUs matching "bolt", as JSON
  stockdesk compare --search bolt -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd, &opts)
		},
	}
	opts.bind(cmd)
	_ = cmd.Flags().MarkHidden("category")

	return cmd
}

func runCompare(cmd *cobra.Command, opts *listOptions) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	if err := opts.resolve(cfg); err != nil {
		return err
	}
	by, err := pagination.ParseSort(opts.sort)
	if err != nil {
		return err
	}
	if err = inventory.ComparisonSorter.Validate(by); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	company, supplier, err := fetchBothSides(ctx, a)
	if err != nil {
		return err
	}

	rows := inventory.Compare(company, supplier)
	rows = FilterComparisons(ctx, rows, opts.search)
	if !by.IsZero() {
		rows = inventory.ComparisonSorter.Sort(rows, by)
	}

	model := pagination.ComputePageModel(
		len(rows), opts.pageSize, opts.page, opts.maxVisible,
		pagination.WithSiblings(cfg.List.Siblings),
	)
	pageRows := pagination.SlicePage(rows, model.CurrentPage, opts.pageSize)

	if opts.output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), listOutput[inventory.Comparison]{
			Resource:   "comparison",
			Items:      pageRows,
			Pagination: model.Meta(),
			Pages:      model.Labels(),
		})
	}

	if len(pageRows) == 0 {
		cmd.Println("No matching SKUs.")
		return nil
	}

	table := make([][]string, 0, len(pageRows))
	for _, r := range pageRows {
		table = append(table, r.Row())
	}
	if err = renderTable(cmd.OutOrStdout(), inventory.ComparisonColumns, table); err != nil {
		return err
	}
	cmd.Println()
	renderPager(cmd.OutOrStdout(), model)
	return nil
}

// fetchBothSides fetches company and supplier inventory concurrently.
func fetchBothSides(ctx context.Context, a *app) ([]inventory.StockItem, []inventory.StockItem, error) {
	var company, supplier []inventory.StockItem

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2) //nolint:mnd // one fetch per category
	for _, c := range []query.Category{query.CategoryCompany, query.CategorySupplier} {
		g.Go(func() error {
			p := query.Params{Page: pagination.MinPage, PageSize: compareFetchSize, Category: c}
			res, err := fetchPage[inventory.StockItem](gctx, a, inventory.ResourceInventory, p)
			if err != nil {
				return err
			}
			if c == query.CategoryCompany {
				company = res.Items
			} else {
				supplier = res.Items
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return company, supplier, nil
}
