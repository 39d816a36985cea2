// Package main provides the entry point for the campaign CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0-dev"
	globalDir string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "campaign",
		Short:         "Campaign manager for tabletop role-playing games",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalDir, "dir", "C", "", "Project directory holding .campaign (default: current directory)")

	rootCmd.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newUsersCmd(),
		newImportCmd(),
		newExportCmd(),
		newTypesCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// projectDir returns the directory the config is resolved against.
func projectDir() (string, error) {
	if globalDir != "" {
		return globalDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}
