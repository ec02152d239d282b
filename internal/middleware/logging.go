package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードと書き込みバイト数を記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
	bytes      int
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// requestAnnotations は内側のミドルウェアが判明した情報をアクセスログへ渡すための入れ物。
// セッションミドルウェアはロギングミドルウェアより内側で動くため、コンテキスト値では外側に届かない。
type requestAnnotations struct {
	userID     string
	authMethod AuthMethod
}

var annotationsContextKey = contextKey("request_annotations")

// withAnnotations はリクエストにアノテーションの入れ物を持たせる。既に持っている場合はそれを返す。
func withAnnotations(r *http.Request) (*http.Request, *requestAnnotations) {
	if ann, ok := r.Context().Value(annotationsContextKey).(*requestAnnotations); ok {
		return r, ann
	}
	ann := &requestAnnotations{}
	return r.WithContext(context.WithValue(r.Context(), annotationsContextKey, ann)), ann
}

// annotateSession は認証済みユーザーをアクセスログ用に記録する。
func annotateSession(ctx context.Context, userID string, method AuthMethod) {
	if ann, ok := ctx.Value(annotationsContextKey).(*requestAnnotations); ok {
		ann.userID = userID
		ann.authMethod = method
	}
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、route、status、bytes、duration_ms、
// 認証済みの場合はuser_idとauth_methodを含む。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			r, ann := withAnnotations(r)
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Int("bytes", rec.bytes),
				slog.Float64("duration_ms", durationMs),
			}

			// /api/ideas/{id} のようなルートパターンでIDごとのばらつきを集約する
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					args = append(args, slog.String("route", pattern))
				}
			}

			userID := ann.userID
			if userID == "" {
				userID, _ = UserIDFromContext(r.Context())
			}
			if userID != "" {
				args = append(args, slog.String("user_id", userID))
			}
			if ann.authMethod != "" {
				args = append(args, slog.String("auth_method", string(ann.authMethod)))
			}

			level := slog.LevelInfo
			if rec.statusCode >= 500 {
				level = slog.LevelError
			} else if rec.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
