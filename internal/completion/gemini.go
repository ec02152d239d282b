package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// defaultGeminiModel はモデル未指定時に使用するGeminiモデル。
const defaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig はGeminiクライアントの設定。
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // 空の場合はGemini APIの公式エンドポイント
	Timeout time.Duration
}

// GeminiClient はGoogle Gen AI SDKを使用するCompleter。
type GeminiClient struct {
	client  *genai.Client
	logger  *slog.Logger
	model   string
	timeout time.Duration
}

// NewGeminiClient はGeminiClientを生成する。
func NewGeminiClient(ctx context.Context, logger *slog.Logger, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClient{
		client:  client,
		logger:  logger,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// Complete はプロンプトを送信し、生成されたテキストを返す。
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		c.logger.Error("gemini generate content failed",
			slog.String("error", err.Error()),
			slog.String("model", c.model),
		)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		c.logger.Debug("gemini returned empty content", slog.String("model", c.model))
		return "", nil
	}
	return text, nil
}

// compile-time interface check
var _ Completer = (*GeminiClient)(nil)
