package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// captureDefaultLogger はslogのデフォルトロガーをバッファへ差し替える。
func captureDefaultLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRecoveryMiddleware_PanicReturnsInternalError(t *testing.T) {
	buf := captureDefaultLogger(t)

	handler := NewRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ideas", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("boom")) {
		t.Errorf("panic value leaked to response: %s", w.Body.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "panic recovered" {
		t.Errorf("msg = %v, want %q", entry["msg"], "panic recovered")
	}
	if entry["panic"] != "boom" {
		t.Errorf("panic = %v, want %q", entry["panic"], "boom")
	}
	if _, ok := entry["user_id"]; ok {
		t.Errorf("user_id should be absent for unauthenticated request, got %v", entry["user_id"])
	}
}

// TestRecoveryMiddleware_LogsRouteAndUser は認証後のハンドラーでpanicした場合に
// ルートパターンとユーザーIDがログに含まれることを検証する。
func TestRecoveryMiddleware_LogsRouteAndUser(t *testing.T) {
	buf := captureDefaultLogger(t)

	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.Use(NewSessionMiddleware(validSessionRepo()))
	r.Delete("/api/ideas/{id}", func(w http.ResponseWriter, r *http.Request) {
		panic("delete failed")
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/ideas/idea-1", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	if entry["route"] != "/api/ideas/{id}" {
		t.Errorf("route = %v, want %q", entry["route"], "/api/ideas/{id}")
	}
	if entry["user_id"] != "user-bearer" {
		t.Errorf("user_id = %v, want %q", entry["user_id"], "user-bearer")
	}
}

func TestRecoveryMiddleware_AbortHandlerIsRepanicked(t *testing.T) {
	captureDefaultLogger(t)

	handler := NewRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered = %v, want http.ErrAbortHandler", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ideas", nil))
}
