package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"organizer/internal/organizer"
	"organizer/internal/tasks"
)

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "done <id>",
		Short:        "Mark a task done",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withOrganizer(rootOpts, cmd, func(org *organizer.Organizer) error {
				current, ok := org.Task(id)
				if !ok {
					return fmt.Errorf("task %d: %w", id, tasks.ErrNotFound)
				}
				f := organizer.FieldsOf(current)
				f.Done = true
				res, err := org.EditTask(id, f)
				if err != nil {
					return fmt.Errorf("task %d: %w", id, err)
				}
				if res.SaveErr != nil {
					return res.SaveErr
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "done %d: %s\n", id, res.Task.Formatted(true))
				return err
			})
		},
	}
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "rm <id>",
		Short:        "Delete a task",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withOrganizer(rootOpts, cmd, func(org *organizer.Organizer) error {
				res, err := org.DeleteTask(id)
				if err != nil {
					return fmt.Errorf("task %d: %w", id, err)
				}
				if res.SaveErr != nil {
					return res.SaveErr
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d: %s\n", id, res.Task.Formatted(true))
				return err
			})
		},
	}
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "prune",
		Short:        "Remove every done task",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrganizer(rootOpts, cmd, func(org *organizer.Organizer) error {
				res := org.RemoveDone()
				if res.SaveErr != nil {
					return res.SaveErr
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %d done task(s)\n", len(res.Removed))
				return err
			})
		},
	}
}
