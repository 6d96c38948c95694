package wi

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/output"
	"github.com/hallowell/workitem/internal/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree [work-item-id]",
	Short: "Visualize the subtree rooted at a work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxDepth, _ := cmd.Flags().GetInt("depth")
		includeInactiveItems, _ := cmd.Flags().GetBool("include-inactive")
		includeInactiveDeps, _ := cmd.Flags().GetBool("include-inactive-dependencies")
		jsonOut, _ := cmd.Flags().GetBool("json")

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		node, err := d.GetFullTree(ctx, dispatch.GetFullTreeParams{
			WorkItemID: args[0],
			Options: tree.Options{
				IncludeInactiveItems:        includeInactiveItems,
				IncludeInactiveDependencies: includeInactiveDeps,
				MaxDepth:                    maxDepth,
			},
		})
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut {
			return output.JSON(node)
		}
		fmt.Println(output.RenderTree(node))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Int("depth", 0, "max depth (0 = default of 10)")
	treeCmd.Flags().Bool("include-inactive", false, "include soft-deleted items")
	treeCmd.Flags().Bool("include-inactive-dependencies", false, "include soft-deleted dependency edges")
	treeCmd.Flags().Bool("json", false, "JSON output")
}
