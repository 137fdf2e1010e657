package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/balkashynov/taskpilot/internal/app"
	"github.com/balkashynov/taskpilot/internal/config"
	"github.com/balkashynov/taskpilot/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	seedTasks  bool
)

var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "A task board with a chat copilot",
	Long: `taskpilot keeps a task board for the current session and lets you drive it
in plain language: create tasks, change their status, priority or due date,
and delete them. Run "taskpilot chat" for the terminal UI or "taskpilot serve"
for the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the environment (and --config if given) and applies
// the persistent flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewReader(configPath).Read()
	if err != nil {
		return nil, err
	}
	if seedTasks {
		cfg.Chat.Seed = true
	}
	return cfg, nil
}

// openApp wires the application with its logs written to logOut
func openApp(ctx context.Context, logOut io.Writer) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Env, logOut)
	if err != nil {
		return nil, err
	}

	return app.New(ctx, cfg, logger)
}

// withApp wraps a command function so it runs against a wired application
// that is closed when the command returns
func withApp(fn func(*cobra.Command, []string, *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(cmd, args, a)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVar(&seedTasks, "seed", false, "Start with the sample tasks")
	rootCmd.SetHelpCommand(helpCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}
