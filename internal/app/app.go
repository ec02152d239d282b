// Package app はコマンドラインのエントリーポイントと依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/completion"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/config"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/database"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/generation"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/handler"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/idea"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/logger"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/metrics"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/middleware"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/security"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/worker/cleanup"
)

// shutdownTimeout はグレースフルシャットダウンの待機時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 設定を読み込み、LOG_LEVELに従ってJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer, load func() (*config.Config, error)) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 設定を読み込む
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたレベルでロガーを再構成する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。サブコマンドがない場合はserveとして起動する。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(w, os.Stdout)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Server はAPIサーバーの構成要素。
type Server struct {
	Handler     http.Handler
	RateLimiter *middleware.RateLimiter
}

// NewServer はストレージと生成モデルからAPIハンドラーを構築する。
// 呼び出し側は終了時にRateLimiter.Stopを呼ぶこと。
func NewServer(cfg *config.Config, store *Storage, completer completion.Completer, collector metrics.MetricsCollector) *Server {
	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitGenerate),
	)

	ideaService := idea.NewService(store.Ideas, collector, cfg.CollationLocale)
	generationService := generation.NewService(completer, security.NewTextSanitizer(), generation.Options{
		Temperature: cfg.CompletionTemperature,
		MaxTokens:   cfg.CompletionMaxTokens,
		Logger:      slog.Default(),
		Metrics:     collector,
	})

	router := handler.NewRouter(&handler.RouterDeps{
		SessionFinder:     store.Sessions,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Metrics:           collector,
		Logger:            slog.Default(),
		HealthChecker:     store.Health,
		IdeaService:       ideaService,
		GenerationService: generationService,
	})

	return &Server{Handler: router, RateLimiter: rateLimiter}
}

// newCompleter は設定からテキスト生成クライアントを生成する。
func newCompleter(ctx context.Context, cfg *config.Config) (completion.Completer, error) {
	completer, err := completion.New(ctx, completion.Config{
		Provider: cfg.CompletionProvider,
		APIKey:   cfg.CompletionAPIKey,
		Model:    cfg.CompletionModel,
		BaseURL:  cfg.CompletionBaseURL,
		Timeout:  cfg.CompletionTimeout,
	}, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	return completer, nil
}

// runServe はAPIサーバーモードで起動する。
// APIサーバーとメトリクスサーバーを並行して起動し、
// コンテキストがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	srv := NewServer(cfg, store, completer, collector)
	defer srv.RateLimiter.Stop()

	apiServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.SetupMetricsRoute(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listenAndServe(apiServer, "API server") })
	g.Go(func() error { return listenAndServe(metricsServer, "metrics server") })
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	slog.Info("servers stopped gracefully")
	return nil
}

// listenAndServe はHTTPサーバーを起動し、正常終了時はnilを返す。
func listenAndServe(server *http.Server, name string) error {
	slog.Info(name+" starting", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s listen error: %w", name, err)
	}
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションの定期削除をコンテキストがキャンセルされるまで実行する。
func runWorker(ctx context.Context, cfg *config.Config) error {
	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	job := cleanup.NewCleanupJob(store.Sessions, slog.Default())
	job.Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// スキーマを持たないバックエンドでは何もしない。
func runMigrate(cfg *config.Config) error {
	if cfg.StorageBackend != config.StorageBackendPostgres {
		slog.Info("no migrations required for storage backend",
			slog.String("backend", cfg.StorageBackend),
		)
		return nil
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("schema_version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
