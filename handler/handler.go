package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"consultant-chat/internal/usecase"
)

const (
	headerCorrelationID = "X-Correlation-Id"

	messageMethodNotAllowed = "Method not allowed"
)

// ChatUseCase is the behaviour the handler needs from the use case layer.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// Observer receives one call per handled request.
type Observer interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

type chatRequest struct {
	Message json.RawMessage `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the chat endpoint for API Gateway proxy events.
type Handler struct {
	uc       ChatUseCase
	observer Observer
	newID    func() string
}

type Option func(*Handler)

func WithObserver(o Observer) Option {
	return func(h *Handler) {
		h.observer = o
	}
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	h := &Handler{uc: uc, newID: uuid.NewString}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle never returns an error: every failure is mapped to a JSON response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	corrID := correlationID(req.Headers, h.newID)

	resp := h.route(ctx, req, corrID)
	resp.Headers[headerCorrelationID] = corrID

	if h.observer != nil {
		h.observer.ObserveRequest(strings.ToUpper(req.HTTPMethod), resp.StatusCode, time.Since(start))
	}
	return resp, nil
}

func (h *Handler) route(ctx context.Context, req events.APIGatewayProxyRequest, corrID string) events.APIGatewayProxyResponse {
	switch strings.ToUpper(req.HTTPMethod) {
	case http.MethodOptions:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: corsHeaders()}
	case http.MethodPost:
	default:
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: messageMethodNotAllowed})
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{Message: parseMessage(req)})
	if err != nil {
		return h.failure(ctx, err, corrID)
	}
	if out.Fallback {
		slog.WarnContext(ctx, "upstream answer had no recognizable text", "correlation_id", corrID)
	}
	return jsonResponse(http.StatusOK, chatResponse{Response: out.Response})
}

func (h *Handler) failure(ctx context.Context, err error, corrID string) events.APIGatewayProxyResponse {
	status := http.StatusInternalServerError
	message := usecase.MessageRequestFailed
	code, reason := usecase.ErrorInternal, "unexpected_error"

	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		status = statusFor(ucErr.Code)
		code, reason = ucErr.Code, ucErr.Reason
		if ucErr.Message != "" {
			message = ucErr.Message
		}
	}

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "chat request failed",
		"correlation_id", corrID,
		"status", status,
		"code", code,
		"reason", reason,
		"err", err,
	)
	return jsonResponse(status, errorResponse{Error: message})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseMessage returns the "message" field when it is a JSON string, and ""
// for anything else: a bad body, a missing field or a non-string value.
func parseMessage(req events.APIGatewayProxyRequest) string {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return ""
		}
		body = decoded
	}

	var in chatRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return ""
	}
	var message string
	if err := json.Unmarshal(in.Message, &message); err != nil {
		return ""
	}
	return message
}

func correlationID(headers map[string]string, newID func() string) string {
	for k, v := range headers {
		if strings.EqualFold(k, headerCorrelationID) {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return newID()
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	headers := corsHeaders()
	headers["Content-Type"] = "application/json; charset=utf-8"
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte(`{"error":"` + usecase.MessageRequestFailed + `"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(b),
	}
}
