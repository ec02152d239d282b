package extract

import (
	"encoding/json"
	"strings"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// rawCandidate はモデル出力の1オブジェクト。未知のフィールドは無視する。
type rawCandidate struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Keywords    json.RawMessage `json:"keywords"`
}

// decodeCandidate はJSONオブジェクトをアイデア候補に変換する。
// JSONとして不正な場合はエラーを、形状が要件を満たさない場合はnilを返す。
func decodeCandidate(data []byte) (*model.IdeaCandidate, error) {
	var raw rawCandidate
	if err := json.Unmarshal(data, &raw); err != nil {
		// オブジェクト以外の要素（文字列や数値）は形状不正として扱う
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return nil, nil
		}
		return nil, err
	}

	title, ok := stringField(raw.Title)
	if !ok {
		return nil, nil
	}
	description, ok := stringField(raw.Description)
	if !ok {
		return nil, nil
	}

	return &model.IdeaCandidate{
		Title:       title,
		Description: description,
		Keywords:    keywordsField(raw.Keywords),
	}, nil
}

// stringField は空白以外の文字を含む文字列値を返す。
func stringField(data json.RawMessage) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// keywordsField はキーワードを文字列配列、カンマ区切り文字列、混在配列のいずれからも受け付ける。
// 文字列以外の要素と空要素は除き、順序は保つ。
func keywordsField(data json.RawMessage) []string {
	keywords := []string{}
	if len(data) == 0 {
		return keywords
	}

	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		for _, v := range list {
			if s, ok := v.(string); ok {
				keywords = appendKeyword(keywords, s)
			}
		}
		return keywords
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		for _, s := range strings.Split(joined, ",") {
			keywords = appendKeyword(keywords, s)
		}
	}
	return keywords
}

func appendKeyword(keywords []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		keywords = append(keywords, s)
	}
	return keywords
}
