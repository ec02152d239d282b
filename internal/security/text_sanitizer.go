// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はモデルが生成したテキストからHTMLマークアップを除去し、
// 保存・表示されるアイデアがプレーンテキストのみを含むようにする。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// TextSanitizer はプレーンテキスト化のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize は全てのタグを除去したプレーンテキストを返す。
	// script、styleタグは内容ごと除去される。
	// HTMLエンティティは元の文字に戻す（"&amp;" は "&"）。
	// 前後の空白は除去する。
	Sanitize(s string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はbluemondayのStrictPolicyを使うTextSanitizerを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は全てのタグを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// SanitizeCandidate はアイデア候補の全テキストフィールドをサニタイズしたコピーを返す。
// サニタイズ後に空になったキーワードは除く。
func SanitizeCandidate(s TextSanitizer, c model.IdeaCandidate) model.IdeaCandidate {
	keywords := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		if k = s.Sanitize(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return model.IdeaCandidate{
		Title:       s.Sanitize(c.Title),
		Description: s.Sanitize(c.Description),
		Keywords:    keywords,
	}
}
