package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"consultant-chat/internal/domain"
)

// LLMClient is the single outbound completion call.
type LLMClient interface {
	Configured() bool
	Chat(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// ExchangeRecorder stores answered requests. Failures never reach the caller.
type ExchangeRecorder interface {
	Record(ctx context.Context, message, response string) error
}

// upstreamError is an upstream failure whose Error text is safe to return.
type upstreamError interface {
	error
	HTTPStatusCode() int
}

type ChatService struct {
	llm          LLMClient
	systemPrompt string
	recorder     ExchangeRecorder
}

type ChatInput struct {
	Message string
}

type ChatOutput struct {
	Response string
	// Fallback is set when FallbackReply replaced an empty model answer.
	Fallback bool
}

type Option func(*ChatService)

func WithExchangeRecorder(r ExchangeRecorder) Option {
	return func(s *ChatService) {
		s.recorder = r
	}
}

// NewChatService builds the service. The system prompt is assembled here once
// from knowledgeText and reused by every request.
func NewChatService(llm LLMClient, knowledgeText string, opts ...Option) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	s := &ChatService{
		llm:          llm,
		systemPrompt: buildSystemPrompt(knowledgeText),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SystemPrompt returns the prompt sent as the first message of every request.
func (s *ChatService) SystemPrompt() string {
	return s.systemPrompt
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if !s.llm.Configured() {
		return ChatOutput{}, newError(ErrorConfiguration, "missing_api_key", MessageMissingAPIKey, nil)
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", MessageNoMessage, nil)
	}

	text, err := s.llm.Chat(ctx, buildPromptMessages(s.systemPrompt, message))
	if err != nil {
		var upErr upstreamError
		if errors.As(err, &upErr) {
			return ChatOutput{}, newError(ErrorUpstream, "minimax_error", publicMessage(upErr.Error()), err)
		}
		return ChatOutput{}, newError(ErrorUpstream, "minimax_request_failed", MessageRequestFailed, err)
	}

	out := ChatOutput{Response: strings.TrimSpace(text)}
	if out.Response == "" {
		out.Response = FallbackReply
		out.Fallback = true
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, message, out.Response); err != nil {
			slog.WarnContext(ctx, "exchange log write failed", "err", err)
		}
	}
	return out, nil
}

func publicMessage(msg string) string {
	if msg == "" {
		return MessageRequestFailed
	}
	return msg
}
