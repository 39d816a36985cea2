package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/campaign-core/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new campaign project",
		Long:  "Creates a .campaign directory with default configuration and the SQLite database.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	if config.Exists(dir) {
		return fmt.Errorf("campaign already initialized in %s", dir)
	}

	if err := config.WriteDefault(dir); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	fmt.Printf("Created %s\n", config.ConfigFilePath(dir))

	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Storage.Backend = config.BackendSQLite
	if err := config.Write(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	store, err := openStore(cmd.Context(), dir, cfg.Storage)
	if err != nil {
		return err
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	fmt.Printf("Created %s\n", config.ResolvePath(dir, cfg.Storage.SQLite.Path))

	fmt.Println("\nCampaign initialized. Run 'campaign serve' to start the API.")
	return nil
}
