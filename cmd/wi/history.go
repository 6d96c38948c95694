package wi

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/output"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last action recorded in the history stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		action, err := d.UndoLastAction(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if action == nil {
			fmt.Println("No actions to undo")
			return nil
		}
		fmt.Printf("UNDONE: %s %s\n", action.ActionType, action.WorkItemID)
		return nil
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the most recently undone action",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		action, err := d.RedoLastAction(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if action == nil {
			fmt.Println("No actions to redo")
			return nil
		}
		fmt.Printf("REDONE: %s %s\n", action.ActionType, action.WorkItemID)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded actions within an optional date window",
	RunE: func(cmd *cobra.Command, args []string) error {
		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		limit, _ := cmd.Flags().GetInt("limit")

		var start, end time.Time
		var err error
		if startStr != "" {
			if start, err = time.Parse("2006-01-02", startStr); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
		}
		if endStr != "" {
			if end, err = time.Parse("2006-01-02", endStr); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		actions, err := d.ListHistory(ctx, dispatch.ListHistoryParams{StartDate: start, EndDate: end, Limit: limit})
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(actions)
		}
		for _, a := range actions {
			status := ""
			if a.IsUndone {
				status = " [undone]"
			}
			fmt.Printf("%s  %-22s %s%s\n", a.Timestamp.Format("2006-01-02 15:04:05"), a.ActionType, a.WorkItemID, status)
		}
		return nil
	},
}

var nextTaskCmd = &cobra.Command{
	Use:   "next-task",
	Short: "Show the highest-priority unblocked todo item",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.GetNextTask(ctx, dispatch.GetNextTaskParams{ScopeItemID: scope})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if item == nil {
			fmt.Println("No eligible task")
			return nil
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(redoCmd)

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("start", "", "window start date (yyyy-mm-dd)")
	historyCmd.Flags().String("end", "", "window end date (yyyy-mm-dd)")
	historyCmd.Flags().Int("limit", 50, "maximum actions to return")
	historyCmd.Flags().Bool("json", false, "machine-readable JSON")

	rootCmd.AddCommand(nextTaskCmd)
	nextTaskCmd.Flags().String("scope", "", "limit candidates to this work item's subtree")
}
