package cli

import (
	"fmt"

	"shop-inventory/internal/config"
	"shop-inventory/internal/database"
	"shop-inventory/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|status",
		Short:     "Apply, roll back or inspect database migrations",
		Long:      "up applies every pending migration, down rolls back the latest one, status prints the applied state.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			log, err := logger.New(cfg.Server.Env)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			db, err := database.New(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			switch args[0] {
			case "up":
				return database.RunMigrations(db.DB(), log)
			case "down":
				return database.RollbackMigration(db.DB(), log)
			default:
				return database.GetMigrationStatus(db.DB(), log)
			}
		},
	}
}
