package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

const (
	surrealIdeaTable    = "ideas"
	surrealSessionTable = "sessions"
)

// surrealIdea はSurrealDBに保存するアイデアのドキュメント。
// レコードIDは ideas:<uuid> の形式。
type surrealIdea struct {
	ID            *models.RecordID `json:"id,omitempty"`
	OwnerID       string           `json:"owner_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	ContentType   string           `json:"content_type"`
	Category      string           `json:"category"`
	Keywords      []string         `json:"keywords"`
	IsFavorite    bool             `json:"is_favorite"`
	ScheduledDate *time.Time       `json:"scheduled_date,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func toSurrealIdea(idea *model.Idea) surrealIdea {
	keywords := idea.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return surrealIdea{
		OwnerID:       idea.OwnerID,
		Title:         idea.Title,
		Description:   idea.Description,
		ContentType:   string(idea.ContentType),
		Category:      idea.Category,
		Keywords:      keywords,
		IsFavorite:    idea.IsFavorite,
		ScheduledDate: idea.ScheduledDate,
		CreatedAt:     idea.CreatedAt,
		UpdatedAt:     idea.UpdatedAt,
	}
}

func (d *surrealIdea) toModel() model.Idea {
	keywords := d.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return model.Idea{
		ID:            recordKey(d.ID),
		OwnerID:       d.OwnerID,
		Title:         d.Title,
		Description:   d.Description,
		ContentType:   model.ContentType(d.ContentType),
		Category:      d.Category,
		Keywords:      keywords,
		IsFavorite:    d.IsFavorite,
		ScheduledDate: d.ScheduledDate,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// recordKey はレコードIDからテーブル名を除いたキーを返す。
func recordKey(rid *models.RecordID) string {
	if rid == nil {
		return ""
	}
	return fmt.Sprint(rid.ID)
}

// SurrealIdeaRepo はSurrealDBを使用したアイデアリポジトリ。
type SurrealIdeaRepo struct {
	db *surrealdb.DB
}

// NewSurrealIdeaRepo はSurrealIdeaRepoを生成する。
func NewSurrealIdeaRepo(db *surrealdb.DB) *SurrealIdeaRepo {
	return &SurrealIdeaRepo{db: db}
}

// Create はアイデアを作成する。
func (r *SurrealIdeaRepo) Create(ctx context.Context, idea *model.Idea) error {
	rid := models.NewRecordID(surrealIdeaTable, idea.ID)
	if _, err := surrealdb.Create[surrealIdea](ctx, r.db, rid, toSurrealIdea(idea)); err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}
	return nil
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
// 存在しないレコードはNONEとして返り、IDのないゼロ値にデコードされる。
func (r *SurrealIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	doc, err := surrealdb.Select[surrealIdea](ctx, r.db, models.NewRecordID(surrealIdeaTable, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find idea: %w", err)
	}
	if doc == nil || doc.ID == nil {
		return nil, nil
	}
	idea := doc.toModel()
	return &idea, nil
}

// ListByOwner は所有者のアイデア一覧を作成日時の新しい順で返す。
func (r *SurrealIdeaRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Idea, error) {
	query := "SELECT * FROM ideas WHERE owner_id = $owner_id ORDER BY created_at DESC"
	result, err := surrealdb.Query[[]surrealIdea](ctx, r.db, query, map[string]any{
		"owner_id": ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	ideas := []model.Idea{}
	if result != nil && len(*result) > 0 {
		for i := range (*result)[0].Result {
			ideas = append(ideas, (*result)[0].Result[i].toModel())
		}
	}
	return ideas, nil
}

// Update はアイデアのドキュメントを置き換える。
func (r *SurrealIdeaRepo) Update(ctx context.Context, idea *model.Idea) error {
	rid := models.NewRecordID(surrealIdeaTable, idea.ID)
	if _, err := surrealdb.Update[surrealIdea](ctx, r.db, rid, toSurrealIdea(idea)); err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}
	return nil
}

// Delete は指定IDのアイデアを削除する。
func (r *SurrealIdeaRepo) Delete(ctx context.Context, id string) error {
	if _, err := surrealdb.Delete[surrealIdea](ctx, r.db, models.NewRecordID(surrealIdeaTable, id)); err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	return nil
}

// PingContext はSurrealDBへの疎通を確認する。
func (r *SurrealIdeaRepo) PingContext(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, r.db, "RETURN true", nil); err != nil {
		return fmt.Errorf("surrealdb ping failed: %w", err)
	}
	return nil
}

// surrealSession はSurrealDBに保存されたセッションのドキュメント。
type surrealSession struct {
	ID        *models.RecordID `json:"id,omitempty"`
	UserID    string           `json:"user_id"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
}

// SurrealSessionRepo はSurrealDBを使用したセッションリポジトリ。
type SurrealSessionRepo struct {
	db *surrealdb.DB
}

// NewSurrealSessionRepo はSurrealSessionRepoを生成する。
func NewSurrealSessionRepo(db *surrealdb.DB) *SurrealSessionRepo {
	return &SurrealSessionRepo{db: db}
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *SurrealSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	query := "SELECT * FROM sessions WHERE id = $id AND expires_at > time::now()"
	result, err := surrealdb.Query[[]surrealSession](ctx, r.db, query, map[string]any{
		"id": models.NewRecordID(surrealSessionTable, id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if result == nil || len(*result) == 0 || len((*result)[0].Result) == 0 {
		return nil, nil
	}

	doc := (*result)[0].Result[0]
	return &model.Session{
		ID:        recordKey(doc.ID),
		UserID:    doc.UserID,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
func (r *SurrealSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	query := "DELETE sessions WHERE expires_at <= time::now() RETURN BEFORE"
	result, err := surrealdb.Query[[]surrealSession](ctx, r.db, query, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if result == nil || len(*result) == 0 {
		return 0, nil
	}
	return int64(len((*result)[0].Result)), nil
}

// compile-time interface check
var (
	_ IdeaRepository    = (*SurrealIdeaRepo)(nil)
	_ SessionRepository = (*SurrealSessionRepo)(nil)
	_ HealthChecker     = (*SurrealIdeaRepo)(nil)
)
