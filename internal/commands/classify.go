package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskpilot/internal/app"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Print the intent the configured classifier picks for a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		intent := a.Classifier.Classify(cmd.Context(), strings.Join(args, " "))
		fmt.Fprintln(cmd.OutOrStdout(), intent)
		return nil
	}),
}
