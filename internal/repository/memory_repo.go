package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// MemoryIdeaRepo はプロセス内メモリにアイデアを保持するリポジトリ。
// ローカル開発とテストで使用する。返す値は常に複製で、呼び出し側の変更は反映されない。
type MemoryIdeaRepo struct {
	mu    sync.RWMutex
	ideas map[string]model.Idea
}

// NewMemoryIdeaRepo はMemoryIdeaRepoを生成する。
func NewMemoryIdeaRepo() *MemoryIdeaRepo {
	return &MemoryIdeaRepo{ideas: make(map[string]model.Idea)}
}

// Create はアイデアを作成する。
func (r *MemoryIdeaRepo) Create(_ context.Context, idea *model.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ideas[idea.ID] = idea.Clone()
	return nil
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
func (r *MemoryIdeaRepo) FindByID(_ context.Context, id string) (*model.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idea, ok := r.ideas[id]
	if !ok {
		return nil, nil
	}
	clone := idea.Clone()
	return &clone, nil
}

// ListByOwner は所有者のアイデア一覧を作成日時の新しい順で返す。
func (r *MemoryIdeaRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Idea, error) {
	r.mu.RLock()
	ideas := []model.Idea{}
	for _, idea := range r.ideas {
		if idea.OwnerID == ownerID {
			ideas = append(ideas, idea.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(ideas, func(i, j int) bool {
		if !ideas[i].CreatedAt.Equal(ideas[j].CreatedAt) {
			return ideas[i].CreatedAt.After(ideas[j].CreatedAt)
		}
		return ideas[i].ID < ideas[j].ID
	})
	return ideas, nil
}

// Update はアイデアの可変フィールドとupdated_atを更新する。
// 存在しないIDの場合は何もしない。
func (r *MemoryIdeaRepo) Update(_ context.Context, idea *model.Idea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.ideas[idea.ID]
	if !ok {
		return nil
	}
	updated := idea.Clone()
	updated.OwnerID = current.OwnerID
	updated.CreatedAt = current.CreatedAt
	r.ideas[idea.ID] = updated
	return nil
}

// Delete は指定IDのアイデアを削除する。
func (r *MemoryIdeaRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ideas, id)
	return nil
}

// PingContext は常に成功する。
func (r *MemoryIdeaRepo) PingContext(context.Context) error {
	return nil
}

// MemorySessionRepo はプロセス内メモリにセッションを保持するリポジトリ。
// ローカル開発では起動時に固定セッションを登録して使用する。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	now      func() time.Time
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Put はセッションを登録する。
func (r *MemorySessionRepo) Put(session model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *MemorySessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok || session.Expired(r.now()) {
		return nil, nil
	}
	return &session, nil
}

// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
func (r *MemorySessionRepo) DeleteExpired(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var deleted int64
	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// compile-time interface check
var (
	_ IdeaRepository    = (*MemoryIdeaRepo)(nil)
	_ SessionRepository = (*MemorySessionRepo)(nil)
	_ HealthChecker     = (*MemoryIdeaRepo)(nil)
)
