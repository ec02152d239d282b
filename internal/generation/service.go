// Package generation はアイデア生成のドメインロジックを提供する。
// プロンプト構築、テキスト生成モデルの呼び出し、応答からの候補抽出を1回のリクエストで行う。
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/completion"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/extract"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/metrics"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/prompt"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/security"
)

const (
	// DefaultTemperature はサンプリング温度のデフォルト値。
	DefaultTemperature = 0.8
	// DefaultMaxTokens は生成トークン数上限のデフォルト値。
	DefaultMaxTokens = 2000
)

// Options はService生成時の任意設定。
type Options struct {
	Temperature float64
	MaxTokens   int
	Logger      *slog.Logger
	Metrics     metrics.MetricsCollector
}

// Service はアイデア生成のサービス層。
// 生成結果は永続化しない。
type Service struct {
	completer   completion.Completer
	sanitizer   security.TextSanitizer
	metrics     metrics.MetricsCollector
	logger      *slog.Logger
	temperature float64
	maxTokens   int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(completer completion.Completer, sanitizer security.TextSanitizer, opts Options) *Service {
	s := &Service{
		completer:   completer,
		sanitizer:   sanitizer,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.temperature <= 0 {
		s.temperature = DefaultTemperature
	}
	if s.maxTokens <= 0 {
		s.maxTokens = DefaultMaxTokens
	}
	return s
}

// Generate はリクエストからアイデア候補を生成する。
// テキスト生成モデルの呼び出しは1回のみで、失敗時はGENERATION_FAILEDを返す。
// 応答から候補を1件も抽出できなかった場合も成功として空のスライスを返す。
func (s *Service) Generate(ctx context.Context, req model.GenerationRequest) ([]model.IdeaCandidate, error) {
	if fields := Validate(req); len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}
	req = req.WithDefaults()
	contentType := string(req.ContentType)

	start := time.Now()
	raw, err := s.completer.Complete(ctx, completion.Request{
		System:      prompt.SystemPrompt,
		Prompt:      prompt.Build(req),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	s.metrics.RecordCompletionLatency(time.Since(start))
	if err != nil {
		s.metrics.RecordGenerationFailure(contentType)
		s.logger.Error("アイデア生成に失敗しました",
			slog.String("content_type", contentType),
			slog.String("error", err.Error()),
		)
		return nil, model.NewGenerationError(fmt.Errorf("completion failed: %w", err))
	}

	candidates, strategy := extract.ExtractWithStrategy(raw)
	s.metrics.RecordExtraction(strategy, len(candidates))

	result := make([]model.IdeaCandidate, 0, len(candidates))
	for _, c := range candidates {
		c = security.SanitizeCandidate(s.sanitizer, c)
		if c.Title == "" || c.Description == "" {
			continue
		}
		result = append(result, c)
	}

	s.metrics.RecordGenerationSuccess(contentType)
	s.logger.Info("アイデアを生成しました",
		slog.String("content_type", contentType),
		slog.Int("requested", req.Count),
		slog.Int("extracted", len(result)),
		slog.String("strategy", strategy),
	)
	return result, nil
}

// Validate は生成リクエストを検証し、問題のあるフィールドを返す。
// トーンと件数は未指定（ゼロ値）の場合にデフォルト値が使われるため検証しない。
func Validate(req model.GenerationRequest) []model.FieldError {
	var fields []model.FieldError

	switch {
	case req.ContentType == "":
		fields = append(fields, model.FieldError{Field: "contentType", Message: "コンテンツ種別は必須です"})
	case !req.ContentType.Valid():
		fields = append(fields, model.FieldError{Field: "contentType", Message: "コンテンツ種別はblog、video、socialのいずれかを指定してください"})
	}

	if strings.TrimSpace(req.Topic) == "" {
		fields = append(fields, model.FieldError{Field: "topic", Message: "トピックは必須です"})
	}

	if req.Tone != "" && !req.Tone.Valid() {
		fields = append(fields, model.FieldError{Field: "tone", Message: "トーンはprofessional、casual、friendly、humorous、informativeのいずれかを指定してください"})
	}

	if req.Count != 0 && (req.Count < model.MinIdeaCount || req.Count > model.MaxIdeaCount) {
		fields = append(fields, model.FieldError{
			Field:   "count",
			Message: fmt.Sprintf("件数は%dから%dの範囲で指定してください", model.MinIdeaCount, model.MaxIdeaCount),
		})
	}

	return fields
}
