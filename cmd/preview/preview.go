package preview

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vse/abbc3-migrate/internal/app"
)

// Command creates the preview command, which renders sample text through a
// catalog tag without touching a database.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:     "preview <tag> <text>",
		Short:   "Render text through a catalog tag",
		Example: `  abbc3-migrate preview font= "[font=Arial]Hello[/font]"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.Preview(args[0], args[1], nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
