package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/config"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/database"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/repository"
)

// devSessionTTL は開発用セッションの有効期間。
const devSessionTTL = 365 * 24 * time.Hour

// Storage は設定されたバックエンドのリポジトリ群。
type Storage struct {
	Ideas    repository.IdeaRepository
	Sessions repository.SessionRepository
	Health   repository.HealthChecker

	close func(ctx context.Context) error
}

// Close はバックエンドへの接続を閉じる。
func (s *Storage) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStorage はSTORAGE_BACKENDに応じたストレージを開き、疎通を確認する。
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	var (
		store *Storage
		err   error
	)
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		store, err = openPostgres(cfg)
	case config.StorageBackendSurrealDB:
		store, err = openSurreal(ctx, cfg)
	case config.StorageBackendMemory:
		store = openMemory(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Health.PingContext(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.StorageBackend, err)
	}

	slog.Info("storage connection established", slog.String("backend", cfg.StorageBackend))
	return store, nil
}

func openPostgres(cfg *config.Config) (*Storage, error) {
	db, err := database.Open(cfg.DatabaseURL, database.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Storage{
		Ideas:    repository.NewPostgresIdeaRepo(db),
		Sessions: repository.NewPostgresSessionRepo(db),
		Health:   db,
		close:    func(context.Context) error { return db.Close() },
	}, nil
}

func openSurreal(ctx context.Context, cfg *config.Config) (*Storage, error) {
	db, err := database.OpenSurreal(ctx, database.SurrealConfig{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNS,
		Database:  cfg.SurrealDBDatabase,
		User:      cfg.SurrealDBUser,
		Pass:      cfg.SurrealDBPass,
	})
	if err != nil {
		return nil, err
	}
	ideas := repository.NewSurrealIdeaRepo(db)
	return &Storage{
		Ideas:    ideas,
		Sessions: repository.NewSurrealSessionRepo(db),
		Health:   ideas,
		close:    db.Close,
	}, nil
}

// openMemory はプロセス内メモリのストレージを生成する。
// DEV_SESSION_TOKENが設定されている場合は開発用セッションを登録する。
func openMemory(cfg *config.Config) *Storage {
	ideas := repository.NewMemoryIdeaRepo()
	sessions := repository.NewMemorySessionRepo()
	if cfg.DevSessionToken != "" {
		now := time.Now()
		sessions.Put(model.Session{
			ID:        cfg.DevSessionToken,
			UserID:    cfg.DevUserID,
			ExpiresAt: now.Add(devSessionTTL),
			CreatedAt: now,
		})
		slog.Warn("development session registered", slog.String("user_id", cfg.DevUserID))
	}
	return &Storage{
		Ideas:    ideas,
		Sessions: sessions,
		Health:   ideas,
	}
}
