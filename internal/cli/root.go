package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root command for the stockdesk CLI.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "stockdesk",
		Short:         "Inventory and offer dashboard client",
		Long:          "stockdesk: browse offers and inventory, compare stock, and build offer lists and transfer baskets",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $STOCKDESK_HOME/config.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.AddCommand(
		NewListCmd(),
		NewCompareCmd(),
		NewPagesCmd(),
		NewCartCmd(),
		NewLoginCmd(),
		NewLogoutCmd(),
		NewBrowseCmd(),
		newConfigCmd(),
	)

	return cmd
}

const rootCmdExample = `  # List supplier offers matching "bolt", most expensive first
  stockdesk list offers --search bolt --sort price:desc

  # Show page 3 of company inventory as JSON
  stockdesk list inventory --category company --page 3 --output json

  # Compare company and supplier stock by SKU
  stockdesk compare --sort delta:desc

  # Add an offer to the offer list and export it
  stockdesk cart add o-42 --name "Hex bolt" --price 0.25 --qty 100
  stockdesk cart export --format csv

  # Browse interactively
  stockdesk browse offers`

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration commands"}
	cmd.AddCommand(NewConfigValidateCmd(), NewConfigShowCmd())
	return cmd
}
