package wi

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/output"
)

var moveToStartCmd = &cobra.Command{
	Use:   "move-to-start [work-item-id]",
	Short: "Move a work item to the front of its sibling list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.MoveItemToStart(ctx, dispatch.MoveItemToStartParams{WorkItemID: args[0]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var moveToEndCmd = &cobra.Command{
	Use:   "move-to-end [work-item-id]",
	Short: "Move a work item to the back of its sibling list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.MoveItemToEnd(ctx, dispatch.MoveItemToEndParams{WorkItemID: args[0]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var moveAfterCmd = &cobra.Command{
	Use:   "move-after [work-item-id] [target-sibling-id]",
	Short: "Move a work item to immediately after a sibling",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.MoveItemAfter(ctx, dispatch.MoveItemAfterParams{WorkItemID: args[0], TargetSiblingID: args[1]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var moveBeforeCmd = &cobra.Command{
	Use:   "move-before [work-item-id] [target-sibling-id]",
	Short: "Move a work item to immediately before a sibling",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.MoveItemBefore(ctx, dispatch.MoveItemBeforeParams{WorkItemID: args[0], TargetSiblingID: args[1]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moveToStartCmd)
	rootCmd.AddCommand(moveToEndCmd)
	rootCmd.AddCommand(moveAfterCmd)
	rootCmd.AddCommand(moveBeforeCmd)
}
