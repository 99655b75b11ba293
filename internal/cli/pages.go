package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/pagination"
)

// NewPagesCmd creates the pages command, which prints the page-number strip for a
// result set without fetching anything.
func NewPagesCmd() *cobra.Command {
	var (
		total, page, pageSize, maxVisible, siblings int
		output                                      string
	)

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Show the page-number strip for a result set",
		Example: `  # 120 items, 10 per page, on page 6
  stockdesk pages --total 120 --page 6

  # Same, as JSON
  stockdesk pages --total 120 --page 6 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if !cmd.Flags().Changed("page-size") {
				pageSize = cfg.List.PageSize
			}
			if !cmd.Flags().Changed("max-visible") {
				maxVisible = cfg.List.MaxVisible
			}
			if !cmd.Flags().Changed("siblings") {
				siblings = cfg.List.Siblings
			}
			if output == "" {
				output = cfg.Output.DefaultFormat
			}
			if err := validateOutput(output); err != nil {
				return err
			}

			model := pagination.ComputePageModel(total, pageSize, page, maxVisible, pagination.WithSiblings(siblings))
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Pagination pagination.Meta `json:"pagination"`
					Pages      []string        `json:"pages"`
				}{model.Meta(), model.Labels()})
			}

			if model.TotalItems == 0 {
				cmd.Println("No items.")
				return nil
			}
			renderPager(cmd.OutOrStdout(), model)
			cmd.Printf("Pages: %s\n", strings.Join(model.Labels(), " "))
			return nil
		},
	}

	cmd.Flags().IntVar(&total, "total", 0, "total number of items")
	cmd.Flags().IntVar(&page, "page", pagination.MinPage, "current page")
	cmd.Flags().IntVar(&pageSize, "page-size", pagination.DefaultPageSize, "items per page")
	cmd.Flags().IntVar(&maxVisible, "max-visible", pagination.DefaultMaxVisible, "page numbers to show")
	cmd.Flags().IntVar(&siblings, "siblings", pagination.DefaultSiblings, "pages shown either side of the current page")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table or json")

	return cmd
}
