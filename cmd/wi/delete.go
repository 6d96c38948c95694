package wi

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/output"
)

var deleteProjectCmd = &cobra.Command{
	Use:   "delete-project [project-id]",
	Short: "Soft-delete a root project and its entire subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		result, err := d.DeleteProject(ctx, dispatch.DeleteProjectParams{ProjectID: args[0]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Printf("DELETED %d item(s)\n", result.DeletedCount)
		return nil
	},
}

var deleteTaskCmd = &cobra.Command{
	Use:   "delete-task [work-item-id...]",
	Short: "Soft-delete one or more non-root tasks and their subtrees",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		result, err := d.DeleteTask(ctx, dispatch.DeleteTaskParams{WorkItemIDs: args})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Printf("DELETED %d item(s)\n", result.DeletedCount)
		return nil
	},
}

var deleteChildTasksCmd = &cobra.Command{
	Use:   "delete-child-tasks [parent-id]",
	Short: "Soft-delete selected or all children of a parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		childrenStr, _ := cmd.Flags().GetString("children")
		if !all && childrenStr == "" {
			return fmt.Errorf("one of --all or --children is required")
		}

		var childIDs []string
		if childrenStr != "" {
			for _, id := range strings.Split(childrenStr, ",") {
				childIDs = append(childIDs, strings.TrimSpace(id))
			}
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		result, err := d.DeleteChildTasks(ctx, dispatch.DeleteChildTasksParams{
			ParentWorkItemID:  args[0],
			ChildTaskIDs:      childIDs,
			DeleteAllChildren: all,
		})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Printf("DELETED %d item(s)\n", result.DeletedCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteProjectCmd)
	rootCmd.AddCommand(deleteTaskCmd)
	rootCmd.AddCommand(deleteChildTasksCmd)

	deleteChildTasksCmd.Flags().Bool("all", false, "delete all children")
	deleteChildTasksCmd.Flags().String("children", "", "comma-separated child ids to delete")
}
