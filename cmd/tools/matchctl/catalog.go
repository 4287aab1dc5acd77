// cmd/tools/matchctl/catalog.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"renovation-matching/pkg/registry"
)

func newCatalogCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and list the activity catalog",
	}
	cmd.PersistentFlags().StringVar(&path, "path", defaultCatalogPath, "path to the activity catalog")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check codes, labels and categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := registry.LoadCatalog(path)
			if err != nil {
				return fmt.Errorf("catalog validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s is valid: %d activities (version %s)\n",
				path, len(catalog.Activities), catalog.Version)
			return nil
		},
	}

	var category string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print activity codes and labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := registry.LoadCatalog(path)
			if err != nil {
				return err
			}
			activities := catalog.Activities
			if category != "" {
				if category != registry.CategoryTrade && category != registry.CategoryIntellectual {
					return fmt.Errorf("unknown category %q", category)
				}
				activities = catalog.ByCategory(category)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tCATEGORY\tLABEL")
			for _, a := range activities {
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.Code, a.Category, a.Label)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&category, "category", "", "only list trade or intellectual activities")

	cmd.AddCommand(validateCmd, listCmd)
	return cmd
}
