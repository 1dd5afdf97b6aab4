package main

import (
	"github.com/spf13/cobra"

	"github.com/todmy/topic-miner/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(cmd.Context()); err != nil {
		return err
	}
	logger.Info("schema up to date", "driver", cfg.Database.Driver)
	return nil
}
