package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskpilot/internal/app"
	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

var listFlags struct {
	status   string
	priority string
	search   string
	sort     string
	board    bool
	json     bool
}

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Long: `List tasks with optional filters for status, priority and text.
The store lives for one process, so this is mostly useful with --seed or SEED_FILE.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		opts, err := listOptions()
		if err != nil {
			return err
		}

		tasks, err := a.Store.Query(cmd.Context(), opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case listFlags.json && listFlags.board:
			return json.NewEncoder(out).Encode(db.Board(tasks))
		case listFlags.json:
			return json.NewEncoder(out).Encode(tasks)
		case listFlags.board:
			printBoard(out, db.Board(tasks))
		default:
			printTasks(out, tasks)
		}
		return nil
	}),
}

func listOptions() (db.TaskQueryOptions, error) {
	opts := db.TaskQueryOptions{
		Search: listFlags.search,
		SortBy: listFlags.sort,
	}
	if listFlags.status != "" {
		status, ok := models.ParseStatus(listFlags.status)
		if !ok {
			return opts, fmt.Errorf("invalid status %q: use pending, in-progress, completed or archived", listFlags.status)
		}
		opts.Status = status
	}
	if listFlags.priority != "" {
		priority, ok := models.ParsePriority(listFlags.priority)
		if !ok {
			return opts, fmt.Errorf("invalid priority %q: use low, medium or high", listFlags.priority)
		}
		opts.Priority = priority
	}
	if opts.SortBy != db.SortCreated && opts.SortBy != db.SortDue {
		return opts, fmt.Errorf("invalid sort %q: use created or due", opts.SortBy)
	}
	return opts, nil
}

func printTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found. Try 'taskpilot ls --seed' or create one with 'taskpilot ask'.")
		return
	}

	fmt.Fprintf(w, "%-8s %-40s %-12s %-8s %s\n", "ID", "TITLE", "STATUS", "PRIORITY", "DUE")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, task := range tasks {
		title := task.Title
		if len(title) > 38 {
			title = title[:35] + "..."
		}
		id := task.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%-8s %-40s %-12s %-8s %s\n",
			id,
			title,
			task.Status.Label(),
			task.Priority.Label(),
			parser.FormatDueDate(task.DueDate))
	}
}

func printBoard(w io.Writer, columns []db.Column) {
	for _, column := range columns {
		fmt.Fprintf(w, "%s (%d)\n", column.Label, len(column.Tasks))
		for _, task := range column.Tasks {
			fmt.Fprintf(w, "  - %s [%s]\n", task.Title, task.Priority.Label())
		}
	}
}

func init() {
	listCmd.Flags().StringVarP(&listFlags.status, "status", "s", "", "Filter by status: pending, in-progress, completed, archived")
	listCmd.Flags().StringVarP(&listFlags.priority, "priority", "p", "", "Filter by priority: low, medium, high")
	listCmd.Flags().StringVarP(&listFlags.search, "search", "q", "", "Only tasks whose title or description contains this text")
	listCmd.Flags().StringVar(&listFlags.sort, "sort", db.SortCreated, "Sort by: created, due")
	listCmd.Flags().BoolVar(&listFlags.board, "board", false, "Group tasks by status")
	listCmd.Flags().BoolVar(&listFlags.json, "json", false, "JSON output")
}
