package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/metrics"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/middleware"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Metrics           metrics.MetricsCollector
	Logger            *slog.Logger

	// ヘルスチェック
	HealthChecker repository.HealthChecker

	// アイデア
	IdeaService       IdeaServiceInterface
	GenerationService GenerationServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//	→ Session → CSRF → RateLimit(General) → RateLimit(Generation, 生成のみ)
//
// ヘルスチェック（/health）とCSRFトークン取得（/api/csrf-token）は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))

	ideaHandler := NewIdeaHandler(deps.IdeaService)
	generateHandler := NewGenerateHandler(deps.GenerationService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/ideas", func(r chi.Router) {
			// POST /api/ideas/generate - アイデア生成（生成専用レート制限を追加）
			r.With(deps.RateLimiter.GenerationMiddleware()).Post("/generate", generateHandler.Generate)

			r.Get("/", ideaHandler.ListIdeas)
			r.Post("/", ideaHandler.CreateIdea)
			r.Get("/summary", ideaHandler.GetSummary)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ideaHandler.GetIdea)
				r.Put("/", ideaHandler.UpdateIdea)
				r.Delete("/", ideaHandler.DeleteIdea)
			})
		})
	})

	return r
}
