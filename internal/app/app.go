package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/balkashynov/taskpilot/internal/assistant"
	"github.com/balkashynov/taskpilot/internal/config"
	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/llm"
	"github.com/balkashynov/taskpilot/internal/metrics"
)

// App holds the wired components shared by every delivery surface
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      *db.TaskStore
	Metrics    *metrics.PrometheusRecorder
	Client     llm.Client
	Classifier assistant.Classifier
	Extractor  assistant.Extractor
	Updater    assistant.Updater
	Sessions   *assistant.Sessions

	db *gorm.DB
}

// New opens the store, seeds it when configured and builds the chat
// pipeline for cfg.LLM.Provider.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	recorder := metrics.NewPrometheusRecorder()

	gormDB, err := db.Open(cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: recorder,
		db:      gormDB,
		Store: db.NewTaskStore(gormDB,
			db.WithLogger(logger),
			db.WithRecorder(recorder),
		),
	}

	if err := a.seed(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Client, err = llm.NewClient(cfg.LLM, logger, recorder)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Classifier, err = assistant.NewClassifier(cfg.Chat.Classifier, a.Client, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Updater, err = assistant.NewUpdater(cfg.Chat.Updater, a.Client, cfg.LLM.MaxTokens, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Extractor = assistant.NewDraftExtractor(a.Client, cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	a.Sessions = assistant.NewSessions(a.NewSession,
		assistant.WithIdleTTL(cfg.Chat.SessionTTL),
		assistant.WithMaxSessions(cfg.Chat.MaxSessions),
	)

	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Str("model", a.Client.GetModelName()).
		Str("classifier", cfg.Chat.Classifier).
		Str("updater", cfg.Chat.Updater).
		Msg("initialized application")

	return a, nil
}

// NewSession builds an unregistered chat session over the shared store
func (a *App) NewSession(id string) *assistant.Session {
	return assistant.NewSession(id, a.Store, a.Classifier, a.Extractor,
		assistant.WithLogger(a.Logger),
		assistant.WithUpdater(a.Updater),
		assistant.WithRecorder(a.Metrics),
	)
}

func (a *App) seed(ctx context.Context) error {
	chat := a.Config.Chat
	now := time.Now()

	var (
		tasks  = db.SampleTasks(now)
		source = "samples"
	)
	switch {
	case chat.SeedFile != "":
		loaded, err := db.LoadSeedFile(chat.SeedFile, now)
		if err != nil {
			return err
		}
		tasks, source = loaded, chat.SeedFile
	case !chat.Seed:
		return nil
	}

	if err := a.Store.Seed(ctx, tasks); err != nil {
		return fmt.Errorf("failed to seed tasks from %s: %w", source, err)
	}
	a.Logger.Info().
		Str("source", source).
		Int("tasks", len(tasks)).
		Msg("seeded task store")
	return nil
}

func (a *App) Close() error {
	return db.Close(a.db)
}
