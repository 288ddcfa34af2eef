package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rl1809/coffee-order/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Long:  "Apply the embedded schema for the configured database driver. Existing tables are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cfg.Database.Driver == config.DriverMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "memory driver has no schema to apply")
				return nil
			}

			// Only the database is needed here.
			cfg.Redis.Addr = ""
			cfg.Kafka.Brokers = nil

			b, err := openBackends(cmd.Context(), cfg, true)
			if err != nil {
				return fmt.Errorf("migrate failed: %w", err)
			}
			b.close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
