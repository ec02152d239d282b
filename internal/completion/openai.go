package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// defaultOpenAIBaseURL はOpenAI APIのベースURL。
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	// defaultOpenAIModel はモデル未指定時に使用するモデル。
	defaultOpenAIModel = "gpt-4"
	// maxErrorBodyBytes はエラーレスポンスからログに残す最大バイト数。
	maxErrorBodyBytes = 512
)

// OpenAIConfig はOpenAI互換Chat Completions APIクライアントの設定。
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIClient はOpenAI互換のChat Completions APIクライアント。
type OpenAIClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	model      string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewOpenAIClient はOpenAIClientを生成する。
func NewOpenAIClient(httpClient *http.Client, logger *slog.Logger, cfg OpenAIConfig) *OpenAIClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   baseURL + "/chat/completions",
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete はシステムメッセージとユーザープロンプトを送信し、最初の選択肢の本文を返す。
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("completion API call failed",
			slog.String("error", err.Error()),
			slog.String("model", c.model),
		)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Error("completion API returned error status",
			slog.Int("http_status", resp.StatusCode),
			slog.String("model", c.model),
			slog.String("body", string(snippet)),
		)
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	// 空の応答は呼び出しの失敗ではない。候補0件として扱う
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		c.logger.Debug("completion API returned empty content",
			slog.String("model", c.model),
			slog.Int("choices", len(parsed.Choices)),
		)
		return "", nil
	}

	return parsed.Choices[0].Message.Content, nil
}

// compile-time interface check
var _ Completer = (*OpenAIClient)(nil)
