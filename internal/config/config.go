package config

import (
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderLocal     = "local"
)

const (
	ClassifierKeyword = "keyword"
	ClassifierModel   = "model"
)

const (
	UpdaterKeyword = "keyword"
	UpdaterModel   = "model"
)

type Config struct {
	Env  string     `yaml:"env" env:"ENV" env-default:"local"`
	HTTP HTTPConfig `yaml:"http"`
	LLM  LLMConfig  `yaml:"llm"`
	Chat ChatConfig `yaml:"chat"`
	DB   DBConfig   `yaml:"db"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Model       string        `yaml:"model" env:"LLM_MODEL"`
	APIKey      string        `yaml:"api_key" env:"LLM_API_KEY"`
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"30s"`
	MaxTokens   int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.7"`
}

type ChatConfig struct {
	Classifier string `yaml:"classifier" env:"CLASSIFIER" env-default:"keyword"`
	Updater    string `yaml:"updater" env:"UPDATER" env-default:"keyword"`
	Seed       bool   `yaml:"seed" env:"SEED" env-default:"false"`
	SeedFile   string `yaml:"seed_file" env:"SEED_FILE"`

	// Idle sessions are dropped after SessionTTL; MaxSessions caps the
	// registry. Zero disables either limit.
	SessionTTL  time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"1h"`
	MaxSessions int           `yaml:"max_sessions" env:"MAX_SESSIONS" env-default:"1000"`
}

type DBConfig struct {
	// DSN defaults to a private in-memory database; state never outlives the process
	DSN      string `yaml:"dsn" env:"DB_DSN" env-default:"file::memory:"`
	LogLevel string `yaml:"log_level" env:"DB_LOG_LEVEL" env-default:"warn"`
}

// DefaultModel returns the model used when LLM_MODEL is empty
func (c LLMConfig) DefaultModel() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderOllama:
		return "llama3.1"
	default:
		return "local-keyword"
	}
}

// Validate rejects settings the application cannot start with
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for provider %s", c.LLM.Provider)
		}
	case ProviderOllama, ProviderLocal:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLM.Provider)
	}

	switch c.Chat.Classifier {
	case ClassifierKeyword, ClassifierModel:
	default:
		return fmt.Errorf("unknown classifier: %s", c.Chat.Classifier)
	}

	switch c.Chat.Updater {
	case UpdaterKeyword:
	case UpdaterModel:
		// The offline provider cannot pick a task from a list
		if c.LLM.Provider == ProviderLocal {
			return fmt.Errorf("updater %s needs a remote llm provider", UpdaterModel)
		}
	default:
		return fmt.Errorf("unknown updater: %s", c.Chat.Updater)
	}

	if c.Chat.SessionTTL < 0 || c.Chat.MaxSessions < 0 {
		return fmt.Errorf("SESSION_TTL and MAX_SESSIONS must not be negative")
	}

	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}

	return nil
}
