package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/todmy/topic-miner/internal/source"
	"github.com/todmy/topic-miner/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import [csv]",
	Short: "Load a chat export into the chat_messages table",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	msgs, err := source.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	store, err := storage.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.Messages == nil {
		return errors.New("importing chat messages requires database.driver postgres")
	}
	if err := store.Messages.CreateBatch(cmd.Context(), msgs); err != nil {
		return fmt.Errorf("importing chat messages: %w", err)
	}

	logger.Info("chat messages imported", "file", args[0], "total", len(msgs))
	return nil
}
