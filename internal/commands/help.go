package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show the taskpilot guide",
	Long:  `Display the commands, the configuration variables and what the chat understands.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			// "taskpilot help serve" still shows the command's own help
			if sub, _, err := rootCmd.Find(args); err == nil && sub != rootCmd {
				_ = sub.Help()
				return
			}
		}
		showGuide(cmd.OutOrStdout())
	},
}

func showGuide(w io.Writer) {
	fmt.Fprint(w, `
taskpilot - task board with a chat copilot

COMMANDS:

  chat                    Terminal chat with the board next to it
    tab                   Switch between board and list
    /undo                 Restore the task deleted by the last message

  ask <message>           Send one message and print the transcript
    --json                Print the result as JSON

  classify <message>      Print the intent picked for a message

  ls                      List tasks
    -s, --status          pending | in-progress | completed | archived
    -p, --priority        low | medium | high
    -q, --search          Text in the title or description
    --sort                created | due
    --board               Group by status
    --json                JSON output

  serve                   HTTP API on HTTP_HOST:HTTP_PORT
  version                 Print version information

GLOBAL FLAGS:

  -c, --config <file>     YAML config file
  --seed                  Start with the sample tasks

CHAT:

  Create   "Add a task to review the Q3 budget by Friday, high priority"
  Update   "Change priority of the login bug task to high"
           "update task #3 status to completed, due 15/12/2025"
  Delete   "delete the offsite task"

  Tasks are matched by "task #<id>" first, then by a phrase from the title.

CONFIGURATION:

  LLM_PROVIDER            openai | anthropic | ollama | local
  LLM_MODEL, LLM_API_KEY  Model name and key (OPENAI_API_KEY / ANTHROPIC_API_KEY work too)
  CLASSIFIER              keyword | model
  UPDATER                 keyword | model (model needs a remote provider)
  SESSION_TTL             Idle chat sessions are dropped after this long (1h)
  SEED, SEED_FILE         Sample tasks or a YAML file of tasks
  ENV                     local | dev | prod

`)
}
