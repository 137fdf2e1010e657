package commands

import (
	"github.com/spf13/cobra"

	"github.com/balkashynov/taskpilot/internal/logging"
	"github.com/balkashynov/taskpilot/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat UI",
	Long: `Open the terminal chat with the task board next to it.
Logs are written to taskpilot.log in the temp directory while the UI is open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logFile, err := logging.OpenFile()
		if err != nil {
			return err
		}
		defer logFile.Close()

		a, err := openApp(cmd.Context(), logFile)
		if err != nil {
			return err
		}
		defer a.Close()

		session := a.Sessions.Create()
		return tui.RunChat(cmd.Context(), session, a.Store)
	},
}
