package wi

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/output"
)

var setNameCmd = &cobra.Command{
	Use:   "set-name [work-item-id] [name]",
	Short: "Rename a work item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.SetName(ctx, dispatch.SetNameParams{WorkItemID: args[0], Name: args[1]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var setDescriptionCmd = &cobra.Command{
	Use:   "set-description [work-item-id] [description]",
	Short: "Change a work item's description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.SetDescription(ctx, dispatch.SetDescriptionParams{WorkItemID: args[0], Description: args[1]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var setStatusCmd = &cobra.Command{
	Use:   "set-status [work-item-id] [status]",
	Short: "Change a work item's status: todo, in-progress, review, done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.Status(args[1])
		if !models.IsValidStatus(status) {
			return fmt.Errorf("invalid status: %s", args[1])
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.SetStatus(ctx, dispatch.SetStatusParams{WorkItemID: args[0], Status: status})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var setPriorityCmd = &cobra.Command{
	Use:   "set-priority [work-item-id] [priority]",
	Short: "Change a work item's priority: high, medium, low",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority := models.Priority(args[1])
		if !models.IsValidPriority(priority) {
			return fmt.Errorf("invalid priority: %s", args[1])
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.SetPriority(ctx, dispatch.SetPriorityParams{WorkItemID: args[0], Priority: priority})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var setDueDateCmd = &cobra.Command{
	Use:   "set-due-date [work-item-id] [yyyy-mm-dd|clear]",
	Short: "Change or clear a work item's due date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var due *time.Time
		if args[1] != "clear" {
			parsed, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				return fmt.Errorf("invalid due date %q: %w", args[1], err)
			}
			due = &parsed
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.SetDueDate(ctx, dispatch.SetDueDateParams{WorkItemID: args[0], DueDate: due})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setNameCmd)
	rootCmd.AddCommand(setDescriptionCmd)
	rootCmd.AddCommand(setStatusCmd)
	rootCmd.AddCommand(setPriorityCmd)
	rootCmd.AddCommand(setDueDateCmd)
}
