package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/campaign-core/internal/domain/services"
	"github.com/ersonp/campaign-core/internal/infrastructure/parsers"
)

type importFlags struct {
	user       string
	format     string
	dryRun     bool
	onConflict string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import entities from JSON or CSV",
		Long:  "Bulk-creates entities for a user from a structured file. Rows are validated like API requests.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.user, "user", "u", "", "Owner username (required)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	if flags.onConflict != string(services.ConflictSkip) && flags.onConflict != string(services.ConflictOverwrite) {
		return fmt.Errorf("invalid --on-conflict value %q (valid: skip, overwrite)", flags.onConflict)
	}
	if !slices.Contains(validImportFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validImportFormats)
	}

	rows, err := readImportFile(filePath, flags.format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		if !flags.dryRun {
			if err := requirePersistentStore(d); err != nil {
				return err
			}
		}

		user, err := findUser(ctx, d.Store, flags.user)
		if err != nil {
			return err
		}

		fmt.Printf("Importing %s for %s...\n", filePath, user.Username)

		result, err := d.Import.Import(ctx, user.ID, rows, services.ImportOptions{
			DryRun:     flags.dryRun,
			OnConflict: services.ConflictStrategy(flags.onConflict),
		})
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		printImportResult(result, flags.dryRun)
		return nil
	})
}

func readImportFile(filePath, format string) ([]parsers.RawEntity, error) {
	var parser parsers.Parser
	if format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(format)
	}
	if parser == nil {
		return nil, fmt.Errorf("cannot detect format of %s (use --format)", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	return rows, nil
}

func printImportResult(result *services.ImportResult, dryRun bool) {
	if len(result.Errors) > 0 {
		fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e.Error())
		}
	}

	fmt.Println()
	if dryRun {
		fmt.Printf("Dry run: %d entities would be imported", result.Imported)
	} else {
		fmt.Printf("Imported: %d entities", result.Imported)
	}
	if result.Updated > 0 {
		fmt.Printf(", %d updated", result.Updated)
	}
	if result.Skipped > 0 {
		fmt.Printf(", %d skipped (already exist)", result.Skipped)
	}
	if len(result.Errors) > 0 {
		fmt.Printf(", %d errors", len(result.Errors))
	}
	fmt.Println()
}
