package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"organizer/internal/organizer"
	"organizer/internal/task"
)

type addOptions struct {
	category    string
	subCategory string
	priority    string
	due         string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:          "add <name>...",
		Short:        "Add a task",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.task(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return withOrganizer(rootOpts, cmd, func(org *organizer.Organizer) error {
				res := org.Add(t)
				if res.SaveErr != nil {
					return res.SaveErr
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "added %d: %s\n", res.Task.ID, res.Task.Formatted(true))
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "category")
	cmd.Flags().StringVarP(&opts.subCategory, "sub", "s", "", "sub-category")
	cmd.Flags().StringVarP(&opts.priority, "priority", "p", "", "priority (0-255)")
	cmd.Flags().StringVar(&opts.due, "due", "", "due date (YYYY-MM-DD)")

	return cmd
}

func (o *addOptions) task(name string) (task.Task, error) {
	priority, err := task.ParsePriority(o.priority)
	if err != nil {
		return task.Task{}, err
	}
	due, err := task.ParseDate(o.due)
	if err != nil {
		return task.Task{}, err
	}
	t := task.New(name)
	t.Category = strings.TrimSpace(o.category)
	t.SubCategory = strings.TrimSpace(o.subCategory)
	t.Priority = priority
	t.Due = due
	return t, nil
}
