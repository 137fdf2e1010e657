package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskpilot/internal/app"
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one chat message and print the reply",
	Example: `  taskpilot ask "Create a task to review the Q3 budget by Friday, high priority"
  taskpilot ask --seed "mark task #3 as completed"`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		session := a.Sessions.Create()
		result, err := session.Submit(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printTranscript(out, session.Messages())
		return nil
	}),
}

func printTranscript(w io.Writer, messages []models.ChatMessage) {
	for _, msg := range messages {
		label := "you"
		if msg.Role == models.RoleAssistant {
			label = "copilot"
		}
		fmt.Fprintf(w, "%s: %s\n", label, msg.Content)
		for _, task := range msg.Tasks {
			fmt.Fprintf(w, "  - %s [%s, %s, %s]\n",
				task.Title,
				task.Status.Label(),
				task.Priority.Label(),
				parser.FormatDueDate(task.DueDate))
		}
	}
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the result as JSON")
}
