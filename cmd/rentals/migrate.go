package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	mongomigration "rentals/internal/migrations/mongo"
	"rentals/pkg/config"
)

const migrationJobName = "rentals-migrate"

func newMigrateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create Mongo collections, validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := config.Load(migrationJobName)
			cfg.SetMongo()
			defer cfg.GracefulShutdown()

			db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
			if err := mongomigration.RunMigration(ctx, db, cfg.Log); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration completed successfully.")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 120*time.Second, "overall migration timeout")
	return cmd
}
