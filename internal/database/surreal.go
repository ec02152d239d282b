package database

import (
	"context"
	"fmt"
	"net/url"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

// SurrealConfig はSurrealDB接続の設定。
type SurrealConfig struct {
	URL       string // 例: "ws://localhost:8000/rpc"
	Namespace string
	Database  string
	User      string
	Pass      string
}

// OpenSurreal はSurrealDBへWebSocketで接続し、名前空間とデータベースを選択する。
// time.TimeとレコードIDを正しく扱うためにsurrealcborコーデックを使用する。
// ユーザー名とパスワードの両方が指定された場合のみサインインする。
func OpenSurreal(ctx context.Context, cfg SurrealConfig) (*surrealdb.DB, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse surrealdb url: %w", err)
	}
	if cfg.Namespace == "" || cfg.Database == "" {
		return nil, fmt.Errorf("surrealdb namespace and database are required")
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	if cfg.User != "" && cfg.Pass != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.User,
			"pass": cfg.Pass,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in to surrealdb: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to select surrealdb namespace: %w", err)
	}

	return db, nil
}
