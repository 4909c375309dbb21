package migrate

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vse/abbc3-migrate/internal/app"
	"github.com/vse/abbc3-migrate/internal/conf"
)

// Command creates the migrate command, which installs the tag catalog.
func Command(settings *conf.Settings) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and seed the ABBC3 tags",
		Long: `Apply the schema and data migrations to the forum database. Existing tags
with the same name are updated in place, new tags receive the next free id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.Migrate(cmd.Context(), settings, dryRun)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compile the catalog and show the plan without writing")

	return cmd
}

func printSummary(w io.Writer, s *app.MigrateSummary) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if s.DryRun {
		bold.Fprintln(w, "Migration plan:")
		for _, step := range s.Plan {
			state := yellow.Sprint("pending")
			switch {
			case step.Done:
				state = green.Sprint("recorded")
			case step.Installed:
				state = green.Sprint("installed, will be recorded")
			}
			deps := ""
			if len(step.DependsOn) > 0 {
				deps = " (after " + strings.Join(step.DependsOn, ", ") + ")"
			}
			fmt.Fprintf(w, "  %s%s: %s\n", step.Name, deps, state)
		}
		return
	}

	if len(s.Report.Applied) == 0 {
		green.Fprintln(w, "Nothing to do, all migrations are recorded.")
		return
	}
	for _, name := range s.Report.Applied {
		fmt.Fprintf(w, "%s %s\n", green.Sprint("applied"), name)
	}
	fmt.Fprintf(w, "BBCodes: %d inserted, %d updated", s.Inserted, s.Updated)
	if s.Skipped > 0 {
		fmt.Fprintf(w, ", %s", yellow.Sprintf("%d skipped (id limit reached)", s.Skipped))
	}
	fmt.Fprintln(w)
}
