package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/balkashynov/taskpilot/internal/config"
)

// Default returns the logger used before the configuration is read
func Default(w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}

// New configures the level and output format for env. The console writer is
// used for local runs unless w is a file.
func New(env string, w io.Writer) (zerolog.Logger, error) {
	logger := Default(w)

	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		if _, isFile := w.(*os.File); !isFile || w == os.Stderr || w == os.Stdout {
			consoleWriter := zerolog.NewConsoleWriter()
			consoleWriter.TimeFormat = time.DateTime
			consoleWriter.Out = w
			logger = logger.Output(consoleWriter)
		}
	default:
		return logger, fmt.Errorf("unknown env: %s", env)
	}

	return logger, nil
}

// OpenFile opens the log file used while the terminal UI owns the screen
func OpenFile() (*os.File, error) {
	path := fmt.Sprintf("%s%ctaskpilot.log", os.TempDir(), os.PathSeparator)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
