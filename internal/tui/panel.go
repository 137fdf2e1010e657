package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

// PanelView selects how the side panel shows the tasks
type PanelView int

const (
	ViewBoard PanelView = iota
	ViewList
)

func (v PanelView) String() string {
	if v == ViewList {
		return "List"
	}
	return "Board"
}

// Toggle switches between the board and the list
func (v PanelView) Toggle() PanelView {
	if v == ViewBoard {
		return ViewList
	}
	return ViewBoard
}

var panelHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color(ColorAccentBright))

var emptyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(ColorSecondaryText)).
	Italic(true)

// renderPanel renders the task side panel inside a rounded border of width
func renderPanel(view PanelView, tasks []models.Task, width, height int) string {
	inner := max(width-4, 10)

	var body string
	if view == ViewList {
		body = renderList(tasks, inner)
	} else {
		body = renderBoard(tasks, inner)
	}

	header := panelHeaderStyle.Render(fmt.Sprintf("%s · %d tasks", view, len(tasks)))
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(width - 2)
	if height > 2 {
		style = style.MaxHeight(height)
	}
	return style.Render(header + "\n\n" + body)
}

// renderBoard renders one section per status column
func renderBoard(tasks []models.Task, width int) string {
	var b strings.Builder
	for i, column := range db.Board(tasks) {
		if i > 0 {
			b.WriteString("\n")
		}
		title := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(statusColor(column.Status))).
			Render(fmt.Sprintf("%s (%d)", column.Label, len(column.Tasks)))
		b.WriteString(title + "\n")

		if len(column.Tasks) == 0 {
			b.WriteString(emptyStyle.Render("  -") + "\n")
			continue
		}
		for _, task := range column.Tasks {
			b.WriteString(renderCard(task, width) + "\n")
		}
	}
	return b.String()
}

func renderCard(task models.Task, width int) string {
	priority := lipgloss.NewStyle().
		Foreground(lipgloss.Color(priorityColor(task.Priority))).
		Render("●")
	line := fmt.Sprintf("%s %s", priority, truncate(task.Title, width-4))
	if task.DueDate != nil {
		due := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorDisabledText)).
			Render(truncate(parser.FormatDueDate(task.DueDate), width-4))
		line += "\n    " + due
	}
	return "  " + line
}

// renderList renders a flat table in insertion order
func renderList(tasks []models.Task, width int) string {
	if len(tasks) == 0 {
		return emptyStyle.Render("No tasks yet")
	}

	const (
		statusWidth   = 12
		priorityWidth = 7
	)
	titleWidth := max(width-statusWidth-priorityWidth-2, 8)

	var b strings.Builder
	b.WriteString(panelHeaderStyle.Render(fmt.Sprintf("%-*s %-*s %-*s",
		titleWidth, "TITLE",
		statusWidth, "STATUS",
		priorityWidth, "PRIO")))
	b.WriteString("\n")

	for _, task := range tasks {
		status := lipgloss.NewStyle().
			Foreground(lipgloss.Color(statusColor(task.Status))).
			Width(statusWidth).
			Render(task.Status.Label())
		priority := lipgloss.NewStyle().
			Foreground(lipgloss.Color(priorityColor(task.Priority))).
			Render(task.Priority.Label())
		fmt.Fprintf(&b, "%-*s %s %s\n", titleWidth, truncate(task.Title, titleWidth), status, priority)
	}
	return b.String()
}

// truncate shortens s to width runes, ending with "..."
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
