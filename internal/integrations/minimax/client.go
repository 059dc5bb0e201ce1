package minimax

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"consultant-chat/internal/domain"
)

const (
	DefaultBaseURL = "https://api.minimax.io/v1"
	DefaultModel   = "M2-her"

	temperature         = 0.7
	maxCompletionTokens = 1024

	// appErrorFallback is used when base_resp reports a failure without a message.
	appErrorFallback = "MiniMax API error"
)

// ErrMissingAPIKey is returned by Chat when the client was built without a credential.
var ErrMissingAPIKey = errors.New("minimax: api key is not configured")

// chatRequest is the request shape for the chatcompletion_v2 endpoint.
type chatRequest struct {
	Model               string               `json:"model"`
	Messages            []domain.ChatMessage `json:"messages"`
	Temperature         float64              `json:"temperature"`
	MaxCompletionTokens int                  `json:"max_completion_tokens"`
}

// APIError is an upstream failure whose Message is safe to show to the caller.
// StatusCode is the HTTP status; AppCode is set when the failure came from base_resp.
type APIError struct {
	StatusCode int
	AppCode    int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client calls the MiniMax chat completion API.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = strings.TrimSpace(model)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client. An empty apiKey is allowed: the client reports
// itself as not configured and Chat fails with ErrMissingAPIKey without
// touching the network.
//
// No client-side timeout is set; requests are bounded by the context the
// hosting platform hands to the handler.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		return nil, errors.New("minimax: model must not be empty")
	}
	if c.httpClient == nil {
		return nil, errors.New("minimax: http client must not be nil")
	}
	return c, nil
}

// Configured reports whether a credential is available.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/text/chatcompletion_v2"
	}
	return base + "/v1/text/chatcompletion_v2"
}

// Chat sends messages and returns the normalized answer text. An empty string
// with a nil error means the upstream answered but no known shape carried text.
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(chatRequest{
		Model:               c.model,
		Messages:            messages,
		Temperature:         temperature,
		MaxCompletionTokens: maxCompletionTokens,
	})
	if err != nil {
		return "", fmt.Errorf("minimax: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("minimax: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	status, raw, err := c.doJSONRequest(req)
	if err != nil {
		return "", err
	}

	payload, err := decodeCompletion(raw)
	if err != nil {
		return "", fmt.Errorf("minimax: decode response: %w", err)
	}
	if appErr := payload.appError(status); appErr != nil {
		return "", appErr
	}

	text, _ := extractAnswer(payload)
	return text, nil
}

func (c *Client) doJSONRequest(req *http.Request) (int, []byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("minimax: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		msg := string(buf)
		if msg == "" {
			msg = fmt.Sprintf("API %d", res.StatusCode)
		}
		return res.StatusCode, nil, &APIError{StatusCode: res.StatusCode, Message: msg}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("minimax: read response body: %w", err)
	}
	return res.StatusCode, buf, nil
}
