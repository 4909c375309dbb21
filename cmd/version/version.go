package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vse/abbc3-migrate/internal/abbc3"
	"github.com/vse/abbc3-migrate/internal/buildinfo"
)

// Command creates the version command.
func Command(build *buildinfo.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s), installs ABBC3 %s\n",
				buildinfo.AppName, build.Version(), build.BuildDate(), abbc3.Version)
			return nil
		},
	}
}
