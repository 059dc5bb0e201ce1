package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"consultant-chat/internal/integrations/minimax"
	"consultant-chat/internal/knowledge"
)

// Config is read once at startup and passed to the components that need it.
type Config struct {
	// APIKey is the MiniMax credential. An empty key is not a startup error;
	// every chat request reports it instead.
	APIKey string
	// APIKeyParam names an SSM parameter holding the credential when APIKey is empty.
	APIKeyParam string
	BaseURL     string
	Model       string

	// KnowledgeSource is a file path, s3://bucket/key or ssm:/name.
	KnowledgeSource string

	// ChatLogTable enables the exchange log when set.
	ChatLogTable string
	ChatLogTTL   time.Duration

	HTTPAddress string
	LogLevel    slog.Level
}

// Load builds a Config from getenv (usually os.Getenv) and validates it.
func Load(getenv func(string) string) (Config, error) {
	cfg := defaultConfig(getenv("LAMBDA_TASK_ROOT"))
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

func defaultConfig(taskRoot string) Config {
	return Config{
		BaseURL:         minimax.DefaultBaseURL,
		Model:           minimax.DefaultModel,
		KnowledgeSource: knowledge.DefaultPath(taskRoot),
		ChatLogTTL:      30 * 24 * time.Hour,
		HTTPAddress:     ":8080",
		LogLevel:        slog.LevelInfo,
	}
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	env := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	cfg.APIKey = env("MINIMAX_API_KEY")
	cfg.APIKeyParam = env("MINIMAX_API_KEY_PARAM")
	if v := env("MINIMAX_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := env("MINIMAX_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := env("KNOWLEDGE_SOURCE"); v != "" {
		cfg.KnowledgeSource = v
	}
	cfg.ChatLogTable = env("CHAT_LOG_TABLE")
	if v := env("CHAT_LOG_TTL_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: CHAT_LOG_TTL_DAYS: %w", err)
		}
		cfg.ChatLogTTL = time.Duration(days) * 24 * time.Hour
	}
	if v := env("HTTP_ADDRESS"); v != "" {
		cfg.HTTPAddress = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("config: LOG_LEVEL: %w", err)
		}
	}
	return nil
}

// Validate reports malformed settings. A missing credential is allowed.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("base url %q must be an absolute http(s) url", c.BaseURL)
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if c.KnowledgeSource == "" {
		return errors.New("knowledge source must not be empty")
	}
	if c.ChatLogTTL <= 0 {
		return errors.New("chat log ttl must be positive")
	}
	return nil
}

// NeedsAWS reports whether any configured feature talks to AWS.
func (c Config) NeedsAWS() bool {
	kind, _ := knowledge.ParseLocation(c.KnowledgeSource)
	return kind != knowledge.KindFile || c.ChatLogTable != "" || (c.APIKey == "" && c.APIKeyParam != "")
}
