package wi

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/output"
)

var addDependenciesCmd = &cobra.Command{
	Use:   "add-dependencies [work-item-id]",
	Short: "Add dependency edges from a work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dependsOn, _ := cmd.Flags().GetString("depends-on")
		linked, _ := cmd.Flags().GetString("linked")
		if dependsOn == "" && linked == "" {
			return fmt.Errorf("one of --depends-on or --linked is required")
		}

		var deps []dispatch.DependencyParam
		for _, id := range splitCSV(dependsOn) {
			deps = append(deps, dispatch.DependencyParam{DependsOnWorkItemID: id, DependencyType: models.DependencyFinishToStart})
		}
		for _, id := range splitCSV(linked) {
			deps = append(deps, dispatch.DependencyParam{DependsOnWorkItemID: id, DependencyType: models.DependencyLinked})
		}

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.AddDependencies(ctx, dispatch.AddDependenciesParams{WorkItemID: args[0], Dependencies: deps})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var deleteDependenciesCmd = &cobra.Command{
	Use:   "delete-dependencies [work-item-id] [depends-on-id...]",
	Short: "Deactivate dependency edges from a work item",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.DeleteDependencies(ctx, dispatch.DeleteDependenciesParams{
			WorkItemID:           args[0],
			DependsOnWorkItemIDs: args[1:],
		})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote [work-item-id]",
	Short: "Detach a task into its own root project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.PromoteToProject(ctx, dispatch.PromoteToProjectParams{WorkItemID: args[0]})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(addDependenciesCmd)
	addDependenciesCmd.Flags().String("depends-on", "", "comma-separated finish-to-start dependency ids")
	addDependenciesCmd.Flags().String("linked", "", "comma-separated linked (informational) dependency ids")

	rootCmd.AddCommand(deleteDependenciesCmd)
	rootCmd.AddCommand(promoteCmd)
}
