// Package completion はテキスト生成モデルの呼び出しを抽象化する。
package completion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Request は1回のテキスト生成呼び出しのパラメータ。
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer はプロンプトからテキストを生成する外部サービス。
// 呼び出しは1リクエストにつき1回で、リトライは行わない。
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// プロバイダ名
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config はCompleterの生成に必要な設定。
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // APIのベースURL。空の場合は各プロバイダの公式エンドポイント
	Timeout  time.Duration
}

// New は設定されたプロバイダのCompleterを生成する。
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Completer, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(&http.Client{Timeout: cfg.Timeout}, logger, OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, logger, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
}
