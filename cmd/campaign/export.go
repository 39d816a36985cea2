package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/campaign-core/internal/domain/entities"
)

type exportFlags struct {
	user       string
	format     string
	output     string
	entityType string
}

// campaignExport is everything a user owns.
type campaignExport struct {
	User     string              `json:"user"`
	Entities []*entities.Entity  `json:"entities"`
	Journals []*entities.Journal `json:"journals"`
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's entities and journals",
		Long:  "Exports a user's entities and journals to JSON or markdown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.user, "user", "u", "", "Owner username (required)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.entityType, "type", "t", "", "Only export entities of this type")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		var typ entities.EntityType
		if flags.entityType != "" {
			parsed, err := d.EntityTypes.ParseType(flags.entityType)
			if err != nil {
				return err
			}
			typ = parsed
		}

		user, err := findUser(ctx, d.Store, flags.user)
		if err != nil {
			return err
		}

		ents, err := d.Entities.List(ctx, user.ID, typ)
		if err != nil {
			return err
		}
		journals, err := d.Journals.List(ctx, user.ID)
		if err != nil {
			return err
		}

		data := campaignExport{User: user.Username, Entities: ents, Journals: journals}
		return writeExport(data, flags.format, flags.output)
	})
}

func writeExport(data campaignExport, format, output string) (err error) {
	var w io.Writer = os.Stdout
	if output != "" {
		f, ferr := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if ferr != nil {
			return fmt.Errorf("creating file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	switch format {
	case "json":
		err = formatJSON(w, data)
	case "markdown":
		err = formatMarkdown(w, data)
	default:
		err = fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d entities and %d journals to %s\n", len(data.Entities), len(data.Journals), output)
	}
	return nil
}

func formatJSON(w io.Writer, data campaignExport) error {
	if data.Entities == nil {
		data.Entities = []*entities.Entity{}
	}
	if data.Journals == nil {
		data.Journals = []*entities.Journal{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// formatMarkdown renders entities as tables grouped by type, followed by
// the journals verbatim.
func formatMarkdown(w io.Writer, data campaignExport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Campaign of %s\n\n", data.User)
	fmt.Fprintf(&b, "Entities: %d, journals: %d\n", len(data.Entities), len(data.Journals))

	for _, name := range entities.TypeNames() {
		typ := entities.EntityType(name)
		var group []*entities.Entity
		for _, e := range data.Entities {
			if e.Type == typ {
				group = append(group, e)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n\n", titleCase(name))
		b.WriteString("| Name | Description | Tags | Link |\n")
		b.WriteString("|------|-------------|------|------|\n")
		for _, e := range group {
			fmt.Fprintf(&b, "| %s | %s | %s | `%s` |\n",
				escapeMarkdown(e.Name),
				escapeMarkdown(e.Description),
				escapeMarkdown(strings.Join(e.Tags, ", ")),
				entities.MentionLink(e),
			)
		}
	}

	if len(data.Journals) > 0 {
		b.WriteString("\n## Journals\n")
		for _, j := range data.Journals {
			fmt.Fprintf(&b, "\n### %s\n\n", j.Title)
			fmt.Fprintf(&b, "_%s_", j.CreatedAt.Format("2006-01-02"))
			if len(j.Tags) > 0 {
				fmt.Fprintf(&b, " · %s", strings.Join(j.Tags, ", "))
			}
			b.WriteString("\n\n")
			b.WriteString(strings.TrimSpace(j.Content))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
