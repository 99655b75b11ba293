package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rshade/stockdesk/internal/cart"
	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/inventory"
	"github.com/rshade/stockdesk/internal/logging"
)

const defaultCartName = "offer-list"

// cartColumns are the table headers for cart lines.
//
//nolint:gochecknoglobals // Static table layout.
var cartColumns = []string{"ID", "NAME", "SOURCE", "QTY", "STOCK", "UNIT PRICE", "TOTAL"}

// NewCartCmd creates the cart command group for offer lists and transfer baskets.
func NewCartCmd() *cobra.Command {
	var cartName string

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the offer list and the transfer basket",
		Long: `Carts are persisted in the configured storage backend after every change.

Quantities are clamped to [0, available stock]. A quantity of 0 keeps the line.`,
		Example: `  # Show the transfer basket
  stockdesk cart show --cart transfer

  # Add an offer line, capped at 500 available
  stockdesk cart add o-7 --name "Cable 2m" --price 3.10 --qty 50 --stock 500`,
	}
	cmd.PersistentFlags().StringVar(&cartName, "cart", defaultCartName, "cart to operate on: offer-list or transfer")

	cmd.AddCommand(
		newCartShowCmd(&cartName),
		newCartAddCmd(&cartName),
		newCartRemoveCmd(&cartName),
		newCartSetQtyCmd(&cartName),
		newCartSetStockCmd(&cartName),
		newCartClearCmd(&cartName),
		newCartExportCmd(&cartName),
		newCartSubmitCmd(),
	)
	return cmd
}

// withCart opens the app and the named cart, then runs fn.
func withCart(cmd *cobra.Command, name string, fn func(a *app, c *cart.Cart) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, config.GetGlobalConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.openCart(ctx, name)
	if err != nil {
		return err
	}
	return fn(a, c)
}

func newCartShowCmd(cartName *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show cart lines and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = config.GetDefaultOutputFormat()
			}
			if err := validateOutput(output); err != nil {
				return err
			}
			return withCart(cmd, *cartName, func(_ *app, c *cart.Cart) error {
				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), c.Summary())
				}
				return renderCart(cmd, c)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table or json")
	return cmd
}

func renderCart(cmd *cobra.Command, c *cart.Cart) error {
	s := c.Summary()
	if s.Count == 0 {
		cmd.Println("Cart is empty.")
		return nil
	}

	rows := make([][]string, 0, s.Count)
	for _, l := range s.Items {
		stock := "-"
		if l.AvailableStock != nil {
			stock = FormatNumber(*l.AvailableStock)
		}
		rows = append(rows, []string{
			l.ID, l.Name, l.Source, FormatNumber(l.Quantity), stock,
			FormatMoney(l.UnitPrice), FormatMoney(l.TotalValue),
		})
	}
	if err := renderTable(cmd.OutOrStdout(), cartColumns, rows); err != nil {
		return err
	}
	cmd.Println()
	cmd.Printf("Lines: %s  Units: %s  Total: %s\n",
		FormatNumber(s.Count), FormatNumber(s.TotalQuantity), FormatMoney(s.TotalValue))
	return nil
}

func newCartAddCmd(cartName *string) *cobra.Command {
	var (
		name, price, source, category string
		qty, stock                    int
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a line, merging with an existing line of the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q: %w", price, err)
			}
			item := cart.LineItem{
				ID:        args[0],
				Name:      name,
				Quantity:  qty,
				UnitPrice: unitPrice,
				Source:    source,
				Category:  category,
			}
			if cmd.Flags().Changed("stock") {
				item.AvailableStock = cart.StockPtr(stock)
			}

			return withCart(cmd, *cartName, func(_ *app, c *cart.Cart) error {
				added, addErr := c.Add(cmd.Context(), item)
				if addErr != nil {
					return addErr
				}
				cmd.Printf("Added %s: quantity %s, total %s\n",
					added.ID, FormatNumber(added.Quantity), FormatMoney(added.TotalValue()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&price, "price", "0", "unit price")
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity")
	cmd.Flags().IntVar(&stock, "stock", 0, "available stock (caps the quantity)")
	cmd.Flags().StringVar(&source, "source", inventory.ResourceOffers, "source resource")
	cmd.Flags().StringVar(&category, "category", "", "inventory category")
	return cmd
}

func newCartRemoveCmd(cartName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, *cartName, func(_ *app, c *cart.Cart) error {
				removed, err := c.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					cmd.Printf("No line %s in cart.\n", args[0])
					return nil
				}
				cmd.Printf("Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newCartSetQtyCmd(cartName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-qty <id> <quantity>",
		Short: "Set a line's quantity (clamped to available stock)",
		Args:  cobra.ExactArgs(2), //nolint:mnd // id and quantity
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			return withCart(cmd, *cartName, func(_ *app, c *cart.Cart) error {
				li, setErr := c.SetQuantity(cmd.Context(), args[0], qty)
				if setErr != nil {
					return setErr
				}
				if li.Quantity != qty {
					cmd.Printf("Quantity clamped to %s (available stock)\n", FormatNumber(li.Quantity))
				}
				cmd.Printf("%s: quantity %s, total %s\n", li.ID, FormatNumber(li.Quantity), FormatMoney(li.TotalValue()))
				return nil
			})
		},
	}
}

func newCartSetStockCmd(cartName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-stock <id> <stock>",
		Short: "Set a line's available stock; the quantity is re-clamped",
		Args:  cobra.ExactArgs(2), //nolint:mnd // id and stock
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stock %q: %w", args[1], err)
			}
			return withCart(cmd, *cartName, func(_ *app, c *cart.Cart) error {
				li, setErr := c.SetStock(cmd.Context(), args[0], stock)
				if setErr != nil {
					return setErr
				}
				cmd.Printf("%s: stock %s, quantity %s\n", li.ID, FormatNumber(stock), FormatNumber(li.Quantity))
				return nil
			})
		},
	}
}

func newCartClearCmd(cartName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCart(cmd, *cartName, func(_ *app, c *cart.Cart) error {
				if err := c.Clear(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("Cart cleared.")
				return nil
			})
		},
	}
}

func newCartExportCmd(cartName *string) *cobra.Command {
	var format, file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cart as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != cart.FormatCSV && format != cart.FormatJSON {
				return fmt.Errorf("format must be csv or json, got %q", format)
			}
			return withCart(cmd, *cartName, func(_ *app, c *cart.Cart) error {
				if file == "" {
					return c.Export(cmd.OutOrStdout(), format)
				}
				f, err := os.Create(file)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				if err = c.Export(f, format); err != nil {
					_ = f.Close()
					return err
				}
				if err = f.Close(); err != nil {
					return fmt.Errorf("closing export file: %w", err)
				}
				cmd.Printf("Exported %d lines to %s\n", c.Count(), file)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", cart.FormatCSV, "export format: csv or json")
	cmd.Flags().StringVar(&file, "file", "", "write to file instead of stdout")
	return cmd
}

// newCartSubmitCmd posts the transfer basket as a new transfer and clears it on success.
func newCartSubmitCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the transfer basket as a transfer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withCart(cmd, "transfer", func(a *app, c *cart.Cart) error {
				req := inventory.NewTransferRequest(from, to, c.Items())
				if len(req.Lines) == 0 {
					return fmt.Errorf("%w: transfer basket has no lines with a quantity", cart.ErrValidation)
				}

				token, _ := a.creds.Token(ctx)
				if _, err := a.client.PostJSON(ctx, inventory.ResourceTransfers, req, token); err != nil {
					return describeError(err)
				}

				logging.FromContext(ctx).Info().Ctx(ctx).
					Str("component", "cli").
					Str("operation", "submit_transfer").
					Int("lines", len(req.Lines)).
					Msg("transfer submitted")

				if err := c.Clear(ctx); err != nil {
					return fmt.Errorf("transfer submitted but clearing basket failed: %w", err)
				}
				cmd.Printf("Submitted transfer with %d lines.\n", len(req.Lines))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source location")
	cmd.Flags().StringVar(&to, "to", "", "destination location")
	return cmd
}
