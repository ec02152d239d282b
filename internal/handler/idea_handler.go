package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/idea"
	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// IdeaServiceInterface は保存済みアイデアのハンドラーが必要とするサービスインターフェース。
// すべての操作は呼び出し元ユーザーのIDを受け取る。
type IdeaServiceInterface interface {
	Create(ctx context.Context, ownerID string, input model.IdeaInput) (*model.Idea, error)
	Search(ctx context.Context, ownerID string, q model.IdeaQuery) ([]model.Idea, error)
	Get(ctx context.Context, ownerID, id string) (*model.Idea, error)
	Update(ctx context.Context, ownerID, id string, patch model.IdeaPatch) (*model.Idea, error)
	Delete(ctx context.Context, ownerID, id string) error
	Summary(ctx context.Context, ownerID string, now time.Time) (*model.IdeaSummary, error)
}

// IdeaHandler は保存済みアイデアのHTTPハンドラー。
type IdeaHandler struct {
	service IdeaServiceInterface
	now     func() time.Time
}

// NewIdeaHandler はIdeaHandlerを生成する。
func NewIdeaHandler(service IdeaServiceInterface) *IdeaHandler {
	return &IdeaHandler{
		service: service,
		now:     time.Now,
	}
}

// ideaResponse は保存済みアイデアのAPIレスポンス。
type ideaResponse struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"ownerId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ContentType   string     `json:"contentType"`
	Category      string     `json:"category"`
	Keywords      []string   `json:"keywords"`
	IsFavorite    bool       `json:"isFavorite"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func toIdeaResponse(i *model.Idea) ideaResponse {
	keywords := i.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return ideaResponse{
		ID:            i.ID,
		OwnerID:       i.OwnerID,
		Title:         i.Title,
		Description:   i.Description,
		ContentType:   string(i.ContentType),
		Category:      i.Category,
		Keywords:      keywords,
		IsFavorite:    i.IsFavorite,
		ScheduledDate: i.ScheduledDate,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func toIdeaResponses(ideas []model.Idea) []ideaResponse {
	result := make([]ideaResponse, len(ideas))
	for i := range ideas {
		result[i] = toIdeaResponse(&ideas[i])
	}
	return result
}

// summaryResponse はダッシュボード集計のAPIレスポンス。
type summaryResponse struct {
	Total         int            `json:"total"`
	Favorites     int            `json:"favorites"`
	Scheduled     int            `json:"scheduled"`
	ByContentType map[string]int `json:"byContentType"`
	UpcomingIdeas []ideaResponse `json:"upcomingIdeas"`
	RecentIdeas   []ideaResponse `json:"recentIdeas"`
}

// createIdeaRequest はアイデア保存リクエストのボディ。
type createIdeaRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ContentType   string     `json:"contentType"`
	Category      string     `json:"category"`
	Keywords      []string   `json:"keywords"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

// updateIdeaRequest はアイデア部分更新リクエストのボディ。
// scheduledDateにnullを指定すると公開予定日を解除する。
type updateIdeaRequest struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	ContentType   *string            `json:"contentType"`
	Category      *string            `json:"category"`
	Keywords      *[]string          `json:"keywords"`
	IsFavorite    *bool              `json:"isFavorite"`
	ScheduledDate model.OptionalTime `json:"scheduledDate"`
}

func (req updateIdeaRequest) toPatch() model.IdeaPatch {
	patch := model.IdeaPatch{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Keywords:      req.Keywords,
		IsFavorite:    req.IsFavorite,
		ScheduledDate: req.ScheduledDate,
	}
	if req.ContentType != nil {
		ct := model.ContentType(*req.ContentType)
		patch.ContentType = &ct
	}
	return patch
}

// CreateIdea はアイデアを保存する。
// POST /api/ideas
func (h *IdeaHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createIdeaRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), userID, model.IdeaInput{
		Title:         req.Title,
		Description:   req.Description,
		ContentType:   model.ContentType(req.ContentType),
		Category:      req.Category,
		Keywords:      req.Keywords,
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toIdeaResponse(created))
}

// ListIdeas は保存済みアイデアを検索条件で絞り込んで返す。
// GET /api/ideas?search=&contentType=&tab=&sort=
func (h *IdeaHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	q, err := idea.ParseQuery(params.Get("search"), params.Get("contentType"), params.Get("tab"), params.Get("sort"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ideas, err := h.service.Search(r.Context(), userID, q)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdeaResponses(ideas))
}

// GetSummary はダッシュボード用の集計を返す。
// GET /api/ideas/summary
func (h *IdeaHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), userID, h.now())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	byType := make(map[string]int, len(summary.ByContentType))
	for ct, n := range summary.ByContentType {
		byType[string(ct)] = n
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Total:         summary.Total,
		Favorites:     summary.Favorites,
		Scheduled:     summary.Scheduled,
		ByContentType: byType,
		UpcomingIdeas: toIdeaResponses(summary.UpcomingIdeas),
		RecentIdeas:   toIdeaResponses(summary.RecentIdeas),
	})
}

// GetIdea は保存済みアイデアを1件返す。
// GET /api/ideas/{id}
func (h *IdeaHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdeaResponse(found))
}

// UpdateIdea はアイデアを部分更新する。
// PUT /api/ideas/{id}
func (h *IdeaHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateIdeaRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdeaResponse(updated))
}

// DeleteIdea はアイデアを削除する。
// DELETE /api/ideas/{id}
func (h *IdeaHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "Idea removed"})
}
