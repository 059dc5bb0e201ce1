package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"consultant-chat/internal/config"
)

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelWarn)
	slog.Info("hidden")
	slog.Warn("shown", "k", "v")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"msg":"shown"`)
	require.Contains(t, out, `"k":"v"`)
}

func TestBuild_FileKnowledgeEndToEnd(t *testing.T) {
	var sent []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Собрано"}}]}`))
	}))
	defer upstream.Close()

	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"q":"Город","a":"Москва"}]`), 0o600))

	cfg, err := config.Load(func(k string) string {
		return map[string]string{
			"MINIMAX_API_KEY":  "sk-test",
			"MINIMAX_BASE_URL": upstream.URL,
			"KNOWLEDGE_SOURCE": path,
		}[k]
	})
	require.NoError(t, err)
	require.False(t, cfg.NeedsAWS())

	h, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"message":"Где вы?"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"response":"Собрано"}`, resp.Body)
	require.Contains(t, string(sent), "Город: Москва")
}

func TestBuild_MissingKeyAndKnowledge(t *testing.T) {
	cfg, err := config.Load(func(k string) string {
		if k == "KNOWLEDGE_SOURCE" {
			return filepath.Join(t.TempDir(), "absent.json")
		}
		return ""
	})
	require.NoError(t, err)

	h, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"message":"Привет"}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	require.True(t, strings.Contains(out["error"], "MINIMAX_API_KEY"))
}
