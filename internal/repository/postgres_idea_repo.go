package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// ideaColumns はSELECT対象のカラム。scanIdeaの引数順と一致させる。
const ideaColumns = `id, owner_id, title, description, content_type, category, keywords,
	is_favorite, scheduled_date, created_at, updated_at`

// PostgresIdeaRepo はPostgreSQLを使用したアイデアリポジトリ。
type PostgresIdeaRepo struct {
	db *sql.DB
}

// NewPostgresIdeaRepo はPostgresIdeaRepoを生成する。
func NewPostgresIdeaRepo(db *sql.DB) *PostgresIdeaRepo {
	return &PostgresIdeaRepo{db: db}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanIdea は1行をmodel.Ideaに変換する。
func scanIdea(row rowScanner) (*model.Idea, error) {
	idea := &model.Idea{}
	var contentType string
	var keywords []string
	var scheduled sql.NullTime

	if err := row.Scan(
		&idea.ID, &idea.OwnerID, &idea.Title, &idea.Description, &contentType,
		&idea.Category, pq.Array(&keywords), &idea.IsFavorite, &scheduled,
		&idea.CreatedAt, &idea.UpdatedAt,
	); err != nil {
		return nil, err
	}

	idea.ContentType = model.ContentType(contentType)
	if keywords == nil {
		keywords = []string{}
	}
	idea.Keywords = keywords
	if scheduled.Valid {
		t := scheduled.Time
		idea.ScheduledDate = &t
	}
	return idea, nil
}

// Create はアイデアを作成する。
func (r *PostgresIdeaRepo) Create(ctx context.Context, idea *model.Idea) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ideas (id, owner_id, title, description, content_type, category, keywords,
		                    is_favorite, scheduled_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		idea.ID, idea.OwnerID, idea.Title, idea.Description, string(idea.ContentType),
		idea.Category, pq.Array(idea.Keywords), idea.IsFavorite, idea.ScheduledDate,
		idea.CreatedAt, idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}
	return nil
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
func (r *PostgresIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = $1`,
		id,
	)

	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find idea: %w", err)
	}
	return idea, nil
}

// ListByOwner は所有者のアイデア一覧を作成日時の新しい順で返す。
func (r *PostgresIdeaRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Idea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	ideas := []model.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, *idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return ideas, nil
}

// Update はアイデアの可変フィールドとupdated_atを更新する。
// id、owner_id、created_atは更新しない。
func (r *PostgresIdeaRepo) Update(ctx context.Context, idea *model.Idea) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ideas
		 SET title = $2, description = $3, content_type = $4, category = $5, keywords = $6,
		     is_favorite = $7, scheduled_date = $8, updated_at = $9
		 WHERE id = $1`,
		idea.ID, idea.Title, idea.Description, string(idea.ContentType), idea.Category,
		pq.Array(idea.Keywords), idea.IsFavorite, idea.ScheduledDate, idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}
	return nil
}

// Delete は指定IDのアイデアを削除する。
func (r *PostgresIdeaRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	return nil
}

// compile-time interface check
var _ IdeaRepository = (*PostgresIdeaRepo)(nil)
