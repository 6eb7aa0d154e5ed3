package cli

import (
	"fmt"

	"shop-inventory/internal/config"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shop-inventory",
		Short:         "Inventory API for catalogs and products",
		Long:          "shop-inventory serves the catalog and product inventory API. Without a subcommand it runs the HTTP server.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// loadValidConfig loads the configuration and refuses to continue when it is unusable
func loadValidConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
