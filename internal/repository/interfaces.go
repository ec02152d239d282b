// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// SessionRepository はセッションデータの永続化インターフェース。
// セッションの発行は外部の認証サービスが行う。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// IdeaRepository は保存済みアイデアの永続化インターフェース。
// 所有者の検証はサービス層で行い、リポジトリはIDで直接アクセスする。
type IdeaRepository interface {
	// Create はアイデアを作成する。
	Create(ctx context.Context, idea *model.Idea) error

	// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Idea, error)

	// ListByOwner は所有者のアイデア一覧を作成日時の新しい順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]model.Idea, error)

	// Update はアイデアの可変フィールドとupdated_atを更新する。
	Update(ctx context.Context, idea *model.Idea) error

	// Delete は指定IDのアイデアを削除する。
	Delete(ctx context.Context, id string) error
}

// HealthChecker はストレージの疎通確認インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
