package list

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vse/abbc3-migrate/internal/app"
	"github.com/vse/abbc3-migrate/internal/bbcode"
	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/datastore"
)

// Command creates the list command.
func Command(settings *conf.Settings) *cobra.Command {
	var catalog bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored BBCodes, or the built-in catalog with --catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalog {
				defs, err := bbcode.Catalog()
				if err != nil {
					return err
				}
				return printCatalog(cmd.OutOrStdout(), defs)
			}

			rows, err := app.ListStored(cmd.Context(), settings)
			if err != nil {
				return err
			}
			return printStored(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().BoolVar(&catalog, "catalog", false, "List the embedded catalog instead of the database")

	return cmd
}

func printCatalog(w io.Writer, defs []bbcode.Definition) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSYNTAX")
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%s\n", def.Name, def.Match)
	}
	return tw.Flush()
}

func printStored(w io.Writer, rows []datastore.BBCode) error {
	if len(rows) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No BBCodes stored.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAG\tON POSTING")
	for _, row := range rows {
		shown := "no"
		if row.DisplayOnPosting {
			shown = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row.ID, row.Tag, shown)
	}
	return tw.Flush()
}
