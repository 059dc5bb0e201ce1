// Package bootstrap wires the chat handler from configuration. Both the
// Lambda entrypoint and the local dev server build through it.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"consultant-chat/handler"
	"consultant-chat/internal/config"
	"consultant-chat/internal/integrations/minimax"
	"consultant-chat/internal/integrations/paramstore"
	"consultant-chat/internal/knowledge"
	"consultant-chat/internal/repository"
	"consultant-chat/internal/usecase"
)

// NewLogger installs a JSON slog logger at the given level as the default.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// Build creates the handler. AWS clients are only created when a configured
// feature needs them. Credential and knowledge lookups never fail the build:
// a missing key is reported per request and knowledge falls back to the
// default text.
func Build(ctx context.Context, cfg config.Config, opts ...handler.Option) (*handler.Handler, error) {
	var awsCfg aws.Config
	if cfg.NeedsAWS() {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
		}
		awsCfg = loaded
	}

	var params *paramstore.Client
	paramClient := func() (*paramstore.Client, error) {
		if params != nil {
			return params, nil
		}
		c, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, err
		}
		params = c
		return c, nil
	}

	apiKey := cfg.APIKey
	if apiKey == "" && cfg.APIKeyParam != "" {
		apiKey = resolveAPIKey(ctx, paramClient, cfg.APIKeyParam)
	}

	src, err := knowledgeSource(cfg.KnowledgeSource, awsCfg, paramClient)
	if err != nil {
		slog.WarnContext(ctx, "knowledge source unusable", "source", cfg.KnowledgeSource, "err", err)
	}
	knowledgeText := knowledge.Load(ctx, src)

	client, err := minimax.NewClient(apiKey, minimax.WithBaseURL(cfg.BaseURL), minimax.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create MiniMax client: %w", err)
	}

	var svcOpts []usecase.Option
	if cfg.ChatLogTable != "" {
		exchangeLog, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ChatLogTable, cfg.ChatLogTTL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: create exchange log: %w", err)
		}
		svcOpts = append(svcOpts, usecase.WithExchangeRecorder(exchangeLog))
	}

	svc, err := usecase.NewChatService(client, knowledgeText, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create chat service: %w", err)
	}
	if !client.Configured() {
		slog.WarnContext(ctx, "MINIMAX_API_KEY is not set, chat requests will fail until it is configured")
	}
	return handler.NewHandler(svc, opts...)
}

func resolveAPIKey(ctx context.Context, paramClient func() (*paramstore.Client, error), name string) string {
	params, err := paramClient()
	if err != nil {
		slog.ErrorContext(ctx, "failed to create SSM client", "err", err)
		return ""
	}
	key, err := paramstore.GetSecret(ctx, params, name)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve MiniMax API key", "param", name, "err", err)
		return ""
	}
	return key
}

func knowledgeSource(loc string, awsCfg aws.Config, paramClient func() (*paramstore.Client, error)) (knowledge.Source, error) {
	kind, ref := knowledge.ParseLocation(loc)
	switch kind {
	case knowledge.KindS3:
		src, err := knowledge.NewS3Source(awss3.NewFromConfig(awsCfg), ref)
		if err != nil {
			return nil, err
		}
		return src, nil
	case knowledge.KindSSM:
		params, err := paramClient()
		if err != nil {
			return nil, err
		}
		src, err := knowledge.NewParamSource(params, ref)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return knowledge.FileSource{Path: ref}, nil
	}
}
