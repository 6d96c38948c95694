package wi

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hallowell/workitem/internal/dispatch"
	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/output"
)

var createProjectCmd = &cobra.Command{
	Use:     "create-project [name]",
	Aliases: []string{"create", "new"},
	Short:   "Create a new root project",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("name is required")
		}
		desc, _ := cmd.Flags().GetString("description")

		ctx := context.Background()
		d, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d.CreateProject(ctx, dispatch.CreateProjectParams{Name: name, Description: desc})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

var addTaskCmd = &cobra.Command{
	Use:   "add-task [name]",
	Short: "Add a task under an existing parent",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if len(args) > 0 {
			name = args[0]
		}
		parent, _ := cmd.Flags().GetString("parent")
		desc, _ := cmd.Flags().GetString("description")
		statusStr, _ := cmd.Flags().GetString("status")
		priorityStr, _ := cmd.Flags().GetString("priority")

		if name == "" && parent == "" {
			var err error
			if name, parent, desc, priorityStr, err = runAddTaskWizard(); err != nil {
				return err
			}
		}
		if name == "" {
			return fmt.Errorf("name is required")
		}
		if parent == "" {
			return fmt.Errorf("--parent is required")
		}
		insertAt, _ := cmd.Flags().GetString("insert-at")
		insertAfter, _ := cmd.Flags().GetString("insert-after")
		insertBefore, _ := cmd.Flags().GetString("insert-before")
		dependsOn, _ := cmd.Flags().GetString("depends-on")

		status := models.Status(statusStr)
		if status != "" && !models.IsValidStatus(status) {
			return fmt.Errorf("invalid status: %s", statusStr)
		}
		priority := models.Priority(priorityStr)
		if priority != "" && !models.IsValidPriority(priority) {
			return fmt.Errorf("invalid priority: %s", priorityStr)
		}

		var deps []dispatch.DependencyParam
		if dependsOn != "" {
			for _, id := range strings.Split(dependsOn, ",") {
				deps = append(deps, dispatch.DependencyParam{
					DependsOnWorkItemID: strings.TrimSpace(id),
					DependencyType:      models.DependencyFinishToStart,
				})
			}
		}

		ctx := context.Background()
		d2, s, err := openDispatcher(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		item, err := d2.AddTask(ctx, dispatch.AddTaskParams{
			ParentWorkItemID: parent,
			Name:             name,
			Description:      desc,
			Status:           status,
			Priority:         priority,
			Dependencies:     deps,
			InsertAt:         insertAt,
			InsertAfter:      insertAfter,
			InsertBefore:     insertBefore,
		})
		if err != nil {
			output.Error("%v", err)
			return err
		}
		fmt.Println(output.FormatWorkItemShort(item))
		return nil
	},
}

// runAddTaskWizard prompts interactively for the fields add-task needs when
// invoked with neither --name nor --parent set.
func runAddTaskWizard() (name, parent, description, priority string, err error) {
	priority = string(models.PriorityMedium)

	priorityOptions := []huh.Option[string]{
		huh.NewOption("High", string(models.PriorityHigh)),
		huh.NewOption("Medium", string(models.PriorityMedium)),
		huh.NewOption("Low", string(models.PriorityLow)),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Parent work item id").
				Value(&parent).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("parent is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&description).
				Lines(3),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions...).
				Value(&priority),
		),
	).WithTheme(huh.ThemeDracula())

	err = form.Run()
	return name, parent, description, priority, err
}

func init() {
	rootCmd.AddCommand(createProjectCmd)
	createProjectCmd.Flags().String("name", "", "project name")
	createProjectCmd.Flags().StringP("description", "d", "", "project description")

	rootCmd.AddCommand(addTaskCmd)
	addTaskCmd.Flags().String("name", "", "task name")
	addTaskCmd.Flags().String("parent", "", "parent work item id")
	addTaskCmd.Flags().StringP("description", "d", "", "task description")
	addTaskCmd.Flags().StringP("status", "s", "", "status: todo, in-progress, review, done")
	addTaskCmd.Flags().StringP("priority", "p", "", "priority: high, medium, low")
	addTaskCmd.Flags().String("insert-at", "", "start or end")
	addTaskCmd.Flags().String("insert-after", "", "sibling id to insert after")
	addTaskCmd.Flags().String("insert-before", "", "sibling id to insert before")
	addTaskCmd.Flags().String("depends-on", "", "comma-separated finish-to-start dependency ids")
}
