package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envMap(nil))
	require.NoError(t, err)
	require.Empty(t, cfg.APIKey)
	require.Equal(t, "https://api.minimax.io/v1", cfg.BaseURL)
	require.Equal(t, "M2-her", cfg.Model)
	require.Equal(t, "knowledge.json", cfg.KnowledgeSource)
	require.Empty(t, cfg.ChatLogTable)
	require.Equal(t, 30*24*time.Hour, cfg.ChatLogTTL)
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.False(t, cfg.NeedsAWS())
}

func TestLoad_LambdaTaskRoot(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{"LAMBDA_TASK_ROOT": "/var/task"}))
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/var/task", "knowledge.json"), cfg.KnowledgeSource)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		"MINIMAX_API_KEY":   " sk-env ",
		"MINIMAX_BASE_URL":  "http://localhost:9000",
		"MINIMAX_MODEL":     "MiniMax-Text-01",
		"KNOWLEDGE_SOURCE":  "s3://bucket/knowledge.json",
		"CHAT_LOG_TABLE":    "chat-log",
		"CHAT_LOG_TTL_DAYS": "7",
		"HTTP_ADDRESS":      "127.0.0.1:3000",
		"LOG_LEVEL":         "debug",
	}))
	require.NoError(t, err)
	require.Equal(t, "sk-env", cfg.APIKey)
	require.Equal(t, "http://localhost:9000", cfg.BaseURL)
	require.Equal(t, "MiniMax-Text-01", cfg.Model)
	require.Equal(t, "s3://bucket/knowledge.json", cfg.KnowledgeSource)
	require.Equal(t, "chat-log", cfg.ChatLogTable)
	require.Equal(t, 7*24*time.Hour, cfg.ChatLogTTL)
	require.Equal(t, "127.0.0.1:3000", cfg.HTTPAddress)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.True(t, cfg.NeedsAWS())
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad ttl":       {"CHAT_LOG_TTL_DAYS": "week"},
		"zero ttl":      {"CHAT_LOG_TTL_DAYS": "0"},
		"bad log level": {"LOG_LEVEL": "loud"},
		"relative url":  {"MINIMAX_BASE_URL": "api.minimax.io"},
		"ftp url":       {"MINIMAX_BASE_URL": "ftp://api.minimax.io"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(envMap(env))
			require.Error(t, err)
		})
	}
}

func TestNeedsAWS(t *testing.T) {
	require.True(t, Config{KnowledgeSource: "ssm:/k"}.NeedsAWS())
	require.True(t, Config{KnowledgeSource: "knowledge.json", APIKeyParam: "/p"}.NeedsAWS())
	require.False(t, Config{KnowledgeSource: "knowledge.json", APIKey: "sk", APIKeyParam: "/p"}.NeedsAWS())
	require.True(t, Config{KnowledgeSource: "knowledge.json", ChatLogTable: "t"}.NeedsAWS())
}
