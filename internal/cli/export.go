package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"organizer/internal/organizer"
	"organizer/internal/storage"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write all tasks to another file",
		Long: `Write all tasks to another file.

The target format follows --as, or the file extension when --as is empty:
.yaml and .yml produce YAML, anything else a SQLite database.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			return withOrganizer(rootOpts, cmd, func(org *organizer.Organizer) error {
				all := org.Tasks()
				if err := storage.ForPath(target, format).Save(target, all); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "exported %d task(s) to %s\n", len(all), target)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&format, "as", "", "target format (sqlite|yaml)")

	return cmd
}
