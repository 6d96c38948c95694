package wi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/ioxport"
	"github.com/hallowell/workitem/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export [work-item-id]",
	Short: "Export the subtree rooted at a work item as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		node, err := d.ExportTree(ctx, dispatch.ExportTreeParams{WorkItemID: args[0]})
		if err != nil {
			output.Error("%v", err)
			return err
		}

		data, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return err
		}
		if outPath == "" {
			fmt.Println(string(data))
			return nil
		}
		return os.WriteFile(outPath, data, 0o644)
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a tree-shaped JSON document under an optional parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var root ioxport.Node
		if err := json.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.ImportTree(ctx, dispatch.ImportTreeParams{ParentWorkItemID: parent, Root: root})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", "", "write JSON to this file instead of stdout")

	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("parent", "", "parent work item id (omit to create a new root project)")
}
