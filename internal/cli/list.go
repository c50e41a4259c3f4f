package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"organizer/internal/organizer"
	"organizer/internal/tree"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "Print the category tree",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrganizer(rootOpts, cmd, func(org *organizer.Organizer) error {
				return printTree(cmd.OutOrStdout(), org, showIDs)
			})
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "prefix each task with its id")

	return cmd
}

func printTree(w io.Writer, org *organizer.Organizer, showIDs bool) error {
	rows := org.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	if !showIDs {
		_, err := io.WriteString(w, org.Render())
		return err
	}
	for _, n := range rows {
		var err error
		switch n := n.(type) {
		case *tree.Category:
			_, err = fmt.Fprintln(w, n.DisplayLabel())
		case *tree.Leaf:
			_, err = fmt.Fprintf(w, "  %d  %s\n", n.TaskID, n.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
