package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/stockdesk/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file at ~/.stockdesk/config.yaml, with environment
overrides applied.

This includes:
- API base URL and timeout
- List page size, pager width and debounce
- Storage backend settings
- Output format`,
		Example: `  # Validate current configuration
  stockdesk config validate

  # Validate and show detailed information
  stockdesk config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cmd.Println("Configuration is valid")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  API: %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
	cmd.Printf("  Page size: %d, pager width: %d, siblings: %d\n",
		cfg.List.PageSize, cfg.List.MaxVisible, cfg.List.Siblings)
	cmd.Printf("  Search debounce: %s\n", cfg.List.Debounce)
	cmd.Printf("  Default category: %s\n", cfg.List.Category)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}

	printStorageDetails(cmd, cfg.Storage)
}

// printStorageDetails prints the storage backend summary.
func printStorageDetails(cmd *cobra.Command, sc config.StorageConfig) {
	cmd.Printf("  Storage backend: %s\n", sc.Backend)
	switch sc.Backend {
	case "file":
		cmd.Printf("    dir: %s\n", sc.Dir)
	case "redis":
		cmd.Printf("    addr: %s, db: %d\n", sc.RedisAddr, sc.RedisDB)
	case "sql":
		cmd.Printf("    driver: %s\n", sc.SQLDriver)
	}
	if sc.Namespace != "" {
		cmd.Printf("    namespace: %s\n", sc.Namespace)
	}
}

// NewConfigShowCmd creates the config show command, which prints the effective
// configuration as YAML. Secrets are masked.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *config.GetGlobalConfig()
			if cfg.Storage.RedisPassword != "" {
				cfg.Storage.RedisPassword = "****"
			}
			if cfg.Storage.SQLDSN != "" {
				cfg.Storage.SQLDSN = "****"
			}

			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
