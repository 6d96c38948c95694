package wi

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/output"
)

var showCmd = &cobra.Command{
	Use:     "show [work-item-id]",
	Aliases: []string{"get-details", "view"},
	Short:   "Display full details of a work item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		details, err := d.GetDetails(ctx, dispatch.GetDetailsParams{WorkItemID: args[0]})
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(details)
		}

		item := details.Item
		if renderMarkdown, _ := cmd.Flags().GetBool("render-markdown"); renderMarkdown && item.Description != "" {
			rendered, err := output.RenderMarkdownWithWidth(item.Description, output.TerminalWidth(80))
			if err != nil {
				output.Warning("failed to render description markdown: %v", err)
			} else {
				copy := *item
				copy.Description = rendered
				item = &copy
			}
		}

		fmt.Print(output.FormatWorkItemLong(item, details.Dependencies, details.Dependents, details.Children))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List work items",
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		rootsOnly, _ := cmd.Flags().GetBool("roots-only")
		statusStr, _ := cmd.Flags().GetString("status")
		status := models.Status(statusStr)
		if status != "" && !models.IsValidStatus(status) {
			return fmt.Errorf("invalid status: %s", statusStr)
		}

		var isActive *bool
		if cmd.Flags().Changed("include-inactive") {
			v := false
			isActive = &v
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		items, err := d.ListWorkItems(ctx, dispatch.ListWorkItemsParams{
			ParentWorkItemID: parent,
			RootsOnly:        rootsOnly,
			Status:           status,
			IsActive:         isActive,
		})
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(items)
		}
		for _, item := range items {
			fmt.Println(output.FormatWorkItemShort(item))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("json", false, "machine-readable JSON")
	showCmd.Flags().BoolP("render-markdown", "m", false, "render markdown in description")

	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("parent", "", "list children of this work item id")
	listCmd.Flags().Bool("roots-only", false, "list only root projects")
	listCmd.Flags().StringP("status", "s", "", "filter by status")
	listCmd.Flags().Bool("include-inactive", false, "include soft-deleted items")
	listCmd.Flags().Bool("json", false, "machine-readable JSON")
}
