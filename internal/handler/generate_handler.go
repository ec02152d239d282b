package handler

import (
	"context"
	"net/http"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// GenerationServiceInterface はアイデア生成ハンドラーが必要とするサービスインターフェース。
type GenerationServiceInterface interface {
	Generate(ctx context.Context, req model.GenerationRequest) ([]model.IdeaCandidate, error)
}

// GenerateHandler はアイデア生成のHTTPハンドラー。
type GenerateHandler struct {
	service GenerationServiceInterface
}

// NewGenerateHandler はGenerateHandlerを生成する。
func NewGenerateHandler(service GenerationServiceInterface) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// generateRequest はアイデア生成リクエストのボディ。
type generateRequest struct {
	ContentType string `json:"contentType"`
	Topic       string `json:"topic"`
	Audience    string `json:"audience"`
	Tone        string `json:"tone"`
	Count       int    `json:"count"`
}

// Generate はアイデア候補を生成して返す。生成結果は保存しない。
// POST /api/ideas/generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var req generateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	candidates, err := h.service.Generate(r.Context(), model.GenerationRequest{
		ContentType: model.ContentType(req.ContentType),
		Topic:       req.Topic,
		Audience:    req.Audience,
		Tone:        model.Tone(req.Tone),
		Count:       req.Count,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if candidates == nil {
		candidates = []model.IdeaCandidate{}
	}

	writeJSON(w, http.StatusOK, candidates)
}
