package idea

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// Query は保存済みアイデアを検索条件で絞り込み、並べ替えた新しいスライスを返す。
// 入力スライスは変更しない。アルファベット順は英語の照合規則で比較する。
func Query(ideas []model.Idea, q model.IdeaQuery) []model.Idea {
	return QueryWithLocale(ideas, q, language.English)
}

// QueryWithLocale はQueryと同じ処理を指定ロケールの照合規則で行う。
// 条件はすべてAND結合され、並べ替えは安定ソート。
func QueryWithLocale(ideas []model.Idea, q model.IdeaQuery, locale language.Tag) []model.Idea {
	needle := strings.ToLower(q.SearchText)

	result := make([]model.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if !matchesSearch(idea, needle) || !matchesContentType(idea, q.ContentType) || !matchesTab(idea, q.Tab) {
			continue
		}
		result = append(result, idea)
	}

	switch q.Sort {
	case model.SortOldest:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	case model.SortAlphabetical:
		// Collatorは並行利用できないため呼び出しごとに生成する
		c := collate.New(locale)
		sort.SliceStable(result, func(i, j int) bool {
			return c.CompareString(result[i].Title, result[j].Title) < 0
		})
	default:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}

	return result
}

func matchesSearch(idea model.Idea, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(idea.Title), needle) ||
		strings.Contains(strings.ToLower(idea.Description), needle)
}

func matchesContentType(idea model.Idea, ct model.ContentType) bool {
	return ct == "" || ct == model.ContentTypeAll || idea.ContentType == ct
}

func matchesTab(idea model.Idea, tab model.IdeaTab) bool {
	switch tab {
	case model.IdeaTabFavorites:
		return idea.IsFavorite
	case model.IdeaTabScheduled:
		return idea.IsScheduled()
	default:
		return true
	}
}

// ParseQuery はクエリパラメータの生の値から検索条件を組み立てる。
// 空の値はall/all/newestとして扱い、未知の値はINVALID_FILTERエラーを返す。
func ParseQuery(search, contentType, tab, sortOrder string) (model.IdeaQuery, error) {
	q := model.DefaultIdeaQuery()
	q.SearchText = strings.TrimSpace(search)

	if contentType != "" {
		ct := model.ContentType(contentType)
		if ct != model.ContentTypeAll && !ct.Valid() {
			return model.IdeaQuery{}, model.NewInvalidFilterError("contentType", contentType)
		}
		q.ContentType = ct
	}

	if tab != "" {
		switch t := model.IdeaTab(tab); t {
		case model.IdeaTabAll, model.IdeaTabFavorites, model.IdeaTabScheduled:
			q.Tab = t
		default:
			return model.IdeaQuery{}, model.NewInvalidFilterError("tab", tab)
		}
	}

	if sortOrder != "" {
		switch s := model.SortOrder(sortOrder); s {
		case model.SortNewest, model.SortOldest, model.SortAlphabetical:
			q.Sort = s
		default:
			return model.IdeaQuery{}, model.NewInvalidFilterError("sort", sortOrder)
		}
	}

	return q, nil
}
