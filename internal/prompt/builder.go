// Package prompt は生成リクエストからモデルへの指示文を組み立てる。
package prompt

import (
	"strconv"
	"strings"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// SystemPrompt はモデルに与えるシステムメッセージ。
const SystemPrompt = "You are a creative content strategist helping generate engaging content ideas."

// formatInstruction は出力形式の指示。抽出処理はこの形式を前提とする。
const formatInstruction = " Format each idea as a JSON object with 'title', 'description', and 'keywords' fields."

// typeInstructions はコンテンツ種別ごとの追加指示。
var typeInstructions = map[model.ContentType]string{
	model.ContentTypeBlog: " For each blog post idea, provide a catchy title and a brief description of what the post would cover." +
		" Include potential keywords for SEO.",
	model.ContentTypeVideo: " For each video idea, provide an attention-grabbing title, a concept description," +
		" and suggested visual elements or hooks.",
	model.ContentTypeSocial: " For each social media post idea, specify the platform (Instagram, Twitter, LinkedIn, etc.)," +
		" provide a concise caption, and suggest hashtags or engagement prompts.",
}

// Build は生成リクエストからユーザープロンプトを組み立てる。
// 同じ入力には常に同じ文字列を返す。未指定のトーンと件数はデフォルト値で補う。
func Build(req model.GenerationRequest) string {
	req = req.WithDefaults()

	var b strings.Builder
	b.WriteString("Generate ")
	b.WriteString(strconv.Itoa(req.Count))
	b.WriteString(" creative and engaging ")
	b.WriteString(string(req.ContentType))
	b.WriteString(" content ideas about ")
	b.WriteString(req.Topic)

	if audience := strings.TrimSpace(req.Audience); audience != "" {
		b.WriteString(" for ")
		b.WriteString(audience)
	}

	b.WriteString(". The tone should be ")
	b.WriteString(string(req.Tone))
	b.WriteString(".")

	b.WriteString(typeInstructions[req.ContentType])
	b.WriteString(formatInstruction)

	return b.String()
}
