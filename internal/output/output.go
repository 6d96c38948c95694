// Package output provides styled terminal rendering of work items and trees
// for cmd/wi, grounded on the teacher's internal/output lipgloss helpers.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hallowell/workitem/internal/models"
	"github.com/hallowell/workitem/internal/tree"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	linkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusTodo:       lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.StatusReview:     lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

// Error prints an error message to stdout, teacher-style.
func Error(format string, args ...any) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message to stdout.
func Warning(format string, args ...any) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Success prints a success message to stdout.
func Success(format string, args ...any) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON marshals v as indented JSON and prints it.
func JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// FormatStatus renders a status with its color, e.g. "[in-progress]".
func FormatStatus(s models.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatPriority renders a priority with its color, e.g. "[high]".
func FormatPriority(p models.Priority) string {
	style, ok := priorityStyles[p]
	if !ok {
		return string(p)
	}
	return style.Render(fmt.Sprintf("[%s]", p))
}

// FormatWorkItemShort renders one line: id, priority, name, status.
func FormatWorkItemShort(item *models.WorkItem) string {
	var parts []string
	parts = append(parts, titleStyle.Render(item.ID))
	parts = append(parts, FormatPriority(item.Priority))
	parts = append(parts, item.Name)
	parts = append(parts, FormatStatus(item.Status))
	if item.DueDate != nil {
		parts = append(parts, subtleStyle.Render("due "+item.DueDate.Format("2006-01-02")))
	}
	return strings.Join(parts, "  ")
}

// FormatWorkItemLong renders a multi-line detail view of item plus its
// adjacent edges and children.
func FormatWorkItemLong(item *models.WorkItem, deps, dependents []*models.Dependency, children []*models.WorkItem) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", item.ID, item.Name)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Status: %s | Priority: %s\n", FormatStatus(item.Status), FormatPriority(item.Priority)))
	if item.ParentID != "" {
		sb.WriteString(fmt.Sprintf("Parent: %s\n", item.ParentID))
	}
	if item.DueDate != nil {
		sb.WriteString(fmt.Sprintf("Due: %s\n", item.DueDate.Format("2006-01-02")))
	}

	if item.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render("Description:"))
		sb.WriteString("\n")
		sb.WriteString(item.Description)
		sb.WriteString("\n")
	}

	if len(deps) > 0 {
		sb.WriteString(SectionHeader("Depends On"))
		for _, d := range deps {
			sb.WriteString(fmt.Sprintf("  %s (%s)\n", d.DependsOnID, d.DependencyType))
		}
	}
	if len(dependents) > 0 {
		sb.WriteString(SectionHeader("Blocks"))
		for _, d := range dependents {
			sb.WriteString(fmt.Sprintf("  %s (%s)\n", d.WorkItemID, d.DependencyType))
		}
	}
	if len(children) > 0 {
		sb.WriteString(SectionHeader("Children"))
		for _, c := range children {
			sb.WriteString("  " + FormatWorkItemShort(c) + "\n")
		}
	}

	return sb.String()
}

// SectionHeader returns "\nTITLE:\n".
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// RenderTree renders a tree.Node as indented ASCII-art lines, marking
// linked (promoted) nodes with the " (L)" suffix tree.Node already carries
// in DisplayName.
func RenderTree(node *tree.Node) string {
	var sb strings.Builder
	renderNode(&sb, node, "", true)
	return strings.TrimRight(sb.String(), "\n")
}

func renderNode(sb *strings.Builder, node *tree.Node, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		connector = ""
	}

	name := node.DisplayName
	if node.Linked {
		name = linkedStyle.Render(name)
	}
	sb.WriteString(fmt.Sprintf("%s%s%s %s\n", prefix, connector, name, FormatStatus(node.Item.Status)))

	childPrefix := prefix
	if prefix != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	} else {
		childPrefix = "    "
	}

	for i, child := range node.Children {
		renderNode(sb, child, childPrefix, i == len(node.Children)-1)
	}
}
