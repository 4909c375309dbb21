package status

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vse/abbc3-migrate/internal/abbc3"
	"github.com/vse/abbc3-migrate/internal/app"
	"github.com/vse/abbc3-migrate/internal/conf"
)

// Command creates the status command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed ABBC3 version and recorded migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Status(cmd.Context(), settings)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func printStatus(w io.Writer, r *app.StatusReport) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	marker := red.Sprint("not installed")
	if r.Marker != "" {
		marker = r.Marker
		if r.Installed {
			marker = green.Sprint(marker)
		} else {
			marker = red.Sprintf("%s (older than %s)", marker, abbc3.Version)
		}
	}
	fmt.Fprintf(w, "ABBC3 version: %s\n", marker)

	if !r.Schema {
		fmt.Fprintf(w, "Tables:        %s\n", red.Sprint("missing"))
	} else {
		fmt.Fprintf(w, "BBCodes:       %d\n", r.BBCodes)
	}

	if len(r.Migrations) == 0 {
		fmt.Fprintln(w, "Migrations:    none recorded")
		return
	}
	fmt.Fprintln(w, "Migrations:")
	for _, m := range r.Migrations {
		finished := time.Unix(m.EndTime, 0).Format(time.RFC3339)
		fmt.Fprintf(w, "  %s  %s\n", green.Sprint(m.Name), finished)
	}
}
