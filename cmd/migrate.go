package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/egor/vicai/config"
	"github.com/egor/vicai/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the rate_limits and audit_log tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := database.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s@%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Database)
		return nil
	},
}
