// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: auth, validation, idea, generation, system
	Action   string       // ユーザー向け対処方法
	Fields   []FieldError // バリデーションエラー時の対象フィールド

	cause error // ログ用の原因。レスポンスには含めない
}

// FieldError は入力フィールド単位のバリデーションエラー。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因となったエラーを返す。
func (e *APIError) Unwrap() error {
	return e.cause
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidFilter    = "INVALID_FILTER"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeIdeaNotFound     = "IDEA_NOT_FOUND"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeCSRFInvalid      = "CSRF_TOKEN_INVALID"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewValidationError は入力値検証エラーを生成する。
// メッセージには問題のあったフィールド名を列挙する。
func NewValidationError(fields ...FieldError) *APIError {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", strings.Join(names, ", ")),
		Category: "validation",
		Action:   "各フィールドのエラー内容を確認して再度送信してください。",
		Fields:   fields,
	}
}

// NewInvalidFilterError は無効な検索条件エラーを生成する。
func NewInvalidFilterError(param, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効な検索条件です: %s=%s", param, value),
		Category: "validation",
		Action:   "contentTypeはall/blog/video/social、tabはall/favorites/scheduled、sortはnewest/oldest/alphabeticalのいずれかを指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewGenerationError はアイデア生成失敗エラーを生成する。
// 上流サービスの詳細はメッセージに含めず、causeとしてのみ保持する。
func NewGenerationError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  "アイデアの生成に失敗しました。",
		Category: "generation",
		Action:   "しばらく待ってから再度お試しください。",
		cause:    cause,
	}
}

// NewIdeaNotFoundError はアイデア未検出エラーを生成する。
func NewIdeaNotFoundError(ideaID string) *APIError {
	return &APIError{
		Code:     ErrCodeIdeaNotFound,
		Message:  fmt.Sprintf("指定されたアイデアが見つかりません: %s", ideaID),
		Category: "idea",
		Action:   "アイデアIDを確認してください。",
	}
}

// NewForbiddenError は他ユーザーのアイデアへのアクセスエラーを生成する。
// リソースの存在を示す情報は含めない。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "not authorized",
		Category: "auth",
		Action:   "自分が保存したアイデアのみ操作できます。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewRateLimitError はレート制限超過エラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewCSRFError はCSRFトークン検証失敗エラーを生成する。
func NewCSRFError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// HasCode はerrがAPIErrorであり、指定コードを持つかどうかを返す。
func HasCode(err error, code string) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

// AsAPIError はエラーチェーンからAPIErrorを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
