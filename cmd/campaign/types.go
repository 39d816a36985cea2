package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/campaign-core/internal/domain/services"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types [type]",
		Short: "List entity types and their properties",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services.NewEntityTypeService()
			if len(args) == 1 {
				tmpl, err := svc.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s\n", tmpl.Type, tmpl.Description)
				for _, key := range tmpl.Properties {
					fmt.Printf("  - %s\n", key)
				}
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tDESCRIPTION\tPROPERTIES")
			for _, t := range svc.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Type, t.Description, strings.Join(t.Properties, ", "))
			}
			return w.Flush()
		},
	}
}
