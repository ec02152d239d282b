// Package idea は保存済みアイデアの管理と検索のドメインロジックを提供する。
package idea

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/metrics"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/repository"
)

const (
	// maxTitleLength はタイトルの最大文字数。
	maxTitleLength = 500
	// upcomingLimit はダッシュボードに表示する公開予定アイデアの件数。
	upcomingLimit = 3
	// recentLimit はダッシュボードに表示する最近のアイデアの件数。
	recentLimit = 5
)

// Service は保存済みアイデアのサービス層。
// すべての操作は呼び出し元ユーザーのownerIDを明示的に受け取る。
type Service struct {
	repo    repository.IdeaRepository
	metrics metrics.MetricsCollector
	locale  language.Tag

	now   func() time.Time
	newID func() string
}

// NewService はServiceの新しいインスタンスを生成する。
// localeはアルファベット順ソートの照合規則に使用する。
func NewService(repo repository.IdeaRepository, collector metrics.MetricsCollector, locale language.Tag) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:    repo,
		metrics: collector,
		locale:  locale,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Create はアイデアを保存する。
// IDと作成日時は新規に割り当て、お気に入りはfalseで作成する。
func (s *Service) Create(ctx context.Context, ownerID string, input model.IdeaInput) (*model.Idea, error) {
	var fields []model.FieldError
	fields = append(fields, validateTitle(input.Title)...)
	fields = append(fields, validateDescription(input.Description)...)
	fields = append(fields, validateContentType(input.ContentType)...)
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}

	now := s.now().UTC()
	idea := &model.Idea{
		ID:            s.newID(),
		OwnerID:       ownerID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		ContentType:   input.ContentType,
		Category:      strings.TrimSpace(input.Category),
		Keywords:      normalizeKeywords(input.Keywords),
		IsFavorite:    false,
		ScheduledDate: input.ScheduledDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("アイデアの保存に失敗しました: %w", err)
	}
	s.metrics.RecordIdeaSaved(string(idea.ContentType))

	return idea, nil
}

// List はユーザーの保存済みアイデアを作成日時の新しい順で返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Idea, error) {
	ideas, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("アイデア一覧の取得に失敗しました: %w", err)
	}
	if ideas == nil {
		ideas = []model.Idea{}
	}
	return ideas, nil
}

// Search はユーザーの保存済みアイデアを検索条件で絞り込み、並べ替えて返す。
func (s *Service) Search(ctx context.Context, ownerID string, q model.IdeaQuery) ([]model.Idea, error) {
	ideas, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return QueryWithLocale(ideas, q, s.locale), nil
}

// Get は指定IDのアイデアを返す。
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.Idea, error) {
	return s.findOwned(ctx, ownerID, id)
}

// Update はアイデアを部分更新する。
// パッチで指定されたフィールドのみを反映し、更新日時を現在時刻にする。
func (s *Service) Update(ctx context.Context, ownerID, id string, patch model.IdeaPatch) (*model.Idea, error) {
	current, err := s.findOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return nil, model.NewValidationError(model.FieldError{
			Field:   "body",
			Message: "更新するフィールドを1つ以上指定してください",
		})
	}

	var fields []model.FieldError
	if patch.Title != nil {
		fields = append(fields, validateTitle(*patch.Title)...)
	}
	if patch.Description != nil {
		fields = append(fields, validateDescription(*patch.Description)...)
	}
	if patch.ContentType != nil {
		fields = append(fields, validateContentType(*patch.ContentType)...)
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}

	updated := current.Clone()
	if patch.Title != nil {
		updated.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ContentType != nil {
		updated.ContentType = *patch.ContentType
	}
	if patch.Category != nil {
		updated.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Keywords != nil {
		updated.Keywords = normalizeKeywords(*patch.Keywords)
	}
	if patch.IsFavorite != nil {
		updated.IsFavorite = *patch.IsFavorite
	}
	if patch.ScheduledDate.Set {
		updated.ScheduledDate = patch.ScheduledDate.Time
	}
	updated.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("アイデアの更新に失敗しました: %w", err)
	}
	return &updated, nil
}

// Delete はアイデアを削除する。
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	idea, err := s.findOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("アイデアの削除に失敗しました: %w", err)
	}
	s.metrics.RecordIdeaDeleted(string(idea.ContentType))
	return nil
}

// Summary はダッシュボード用の集計を返す。
// 公開予定はnow以降のものを日付の近い順に、最近のアイデアは作成日時の新しい順に返す。
func (s *Service) Summary(ctx context.Context, ownerID string, now time.Time) (*model.IdeaSummary, error) {
	ideas, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &model.IdeaSummary{
		Total:         len(ideas),
		ByContentType: make(map[model.ContentType]int, len(model.ContentTypes)),
		UpcomingIdeas: []model.Idea{},
		RecentIdeas:   []model.Idea{},
	}
	for _, ct := range model.ContentTypes {
		summary.ByContentType[ct] = 0
	}

	var upcoming []model.Idea
	for _, idea := range ideas {
		summary.ByContentType[idea.ContentType]++
		if idea.IsFavorite {
			summary.Favorites++
		}
		if idea.IsScheduled() {
			summary.Scheduled++
			if !idea.ScheduledDate.Before(now) {
				upcoming = append(upcoming, idea)
			}
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledDate.Before(*upcoming[j].ScheduledDate)
	})
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}
	summary.UpcomingIdeas = append(summary.UpcomingIdeas, upcoming...)

	recent := ideas
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	summary.RecentIdeas = append(summary.RecentIdeas, recent...)

	return summary, nil
}

// findOwned はアイデアを取得し、所有者を検証する。
// 不正な形式のIDは存在しないIDとして扱う。
func (s *Service) findOwned(ctx context.Context, ownerID, id string) (*model.Idea, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewIdeaNotFoundError(id)
	}

	idea, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}
	if idea == nil {
		return nil, model.NewIdeaNotFoundError(id)
	}
	if idea.OwnerID != ownerID {
		return nil, model.NewForbiddenError()
	}
	return idea, nil
}

func validateTitle(title string) []model.FieldError {
	title = strings.TrimSpace(title)
	if title == "" {
		return []model.FieldError{{Field: "title", Message: "タイトルは必須です"}}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return []model.FieldError{{Field: "title", Message: fmt.Sprintf("タイトルは%d文字以内で入力してください", maxTitleLength)}}
	}
	return nil
}

func validateDescription(description string) []model.FieldError {
	if strings.TrimSpace(description) == "" {
		return []model.FieldError{{Field: "description", Message: "説明は必須です"}}
	}
	return nil
}

func validateContentType(ct model.ContentType) []model.FieldError {
	if ct == "" {
		return []model.FieldError{{Field: "contentType", Message: "コンテンツ種別は必須です"}}
	}
	if !ct.Valid() {
		return []model.FieldError{{Field: "contentType", Message: "コンテンツ種別はblog、video、socialのいずれかを指定してください"}}
	}
	return nil
}

// normalizeKeywords は前後の空白を除去し、空のキーワードを取り除く。
// 戻り値はnilにならない。
func normalizeKeywords(keywords []string) []string {
	result := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			result = append(result, k)
		}
	}
	return result
}
