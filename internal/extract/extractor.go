// Package extract はモデルの自由形式テキストからアイデア候補を抽出する。
//
// 抽出は順序付きの戦略リストで行い、1件以上の有効な候補を返した最初の戦略の結果を採用する。
// どの戦略も失敗した場合は空のスライスを返し、エラーにはしない。
package extract

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dxaginfo/content-ideation-ai-platform/internal/model"
)

// 戦略名。メトリクスのラベルにも使用する。
const (
	StrategyDirect  = "direct"
	StrategyArray   = "array"
	StrategyObjects = "objects"
	StrategyNone    = "none"
)

// Strategy は1つの抽出手段を表す。
// Fnは有効な候補を1件以上得られた場合のみtrueを返す。
type Strategy struct {
	Name string
	Fn   func(raw string) ([]model.IdeaCandidate, bool)
}

// Strategies は適用順に並んだ抽出戦略。
var Strategies = []Strategy{
	{Name: StrategyDirect, Fn: parseDirect},
	{Name: StrategyArray, Fn: parseFirstArray},
	{Name: StrategyObjects, Fn: parseFlatObjects},
}

// flatObjectPattern はネストした波括弧を含まないオブジェクトにマッチする。
var flatObjectPattern = regexp.MustCompile(`\{[^{}]*\}`)

// Extract はテキストからアイデア候補を抽出する。
// 結果は常に非nilで、テキスト中の出現順を保つ。
func Extract(raw string) []model.IdeaCandidate {
	candidates, _ := ExtractWithStrategy(raw)
	return candidates
}

// ExtractWithStrategy は抽出結果と、結果を生んだ戦略名を返す。
// いずれの戦略も成功しなかった場合の戦略名はStrategyNone。
func ExtractWithStrategy(raw string) ([]model.IdeaCandidate, string) {
	for _, s := range Strategies {
		if candidates, ok := s.Fn(raw); ok {
			return candidates, s.Name
		}
	}

	slog.Debug("no idea candidates could be extracted",
		slog.Int("response_length", len(raw)),
	)
	return []model.IdeaCandidate{}, StrategyNone
}

// parseDirect はテキスト全体をオブジェクトの配列としてデコードする。
func parseDirect(raw string) ([]model.IdeaCandidate, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &items); err != nil {
		return nil, false
	}
	return validItems(items)
}

// parseFirstArray はテキスト中で最初に括弧の釣り合うオブジェクト配列を探してデコードする。
func parseFirstArray(raw string) ([]model.IdeaCandidate, bool) {
	segment, found := findFirstObjectArray(raw)
	if !found {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(segment), &items); err != nil {
		slog.Debug("embedded array could not be parsed", slog.String("error", err.Error()))
		return nil, false
	}
	return validItems(items)
}

// parseFlatObjects はネストを含まない個々のオブジェクトを独立にデコードする。
// デコードできないオブジェクトは読み飛ばす。
func parseFlatObjects(raw string) ([]model.IdeaCandidate, bool) {
	matches := flatObjectPattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return nil, false
	}

	var candidates []model.IdeaCandidate
	for _, m := range matches {
		c, err := decodeCandidate([]byte(m))
		if err != nil {
			slog.Debug("skipping unparsable idea object",
				slog.String("error", err.Error()),
				slog.Int("object_length", len(m)),
			)
			continue
		}
		if c == nil {
			continue
		}
		candidates = append(candidates, *c)
	}
	return candidates, len(candidates) > 0
}

// validItems は配列要素を個別に検証し、有効な候補のみを返す。
func validItems(items []json.RawMessage) ([]model.IdeaCandidate, bool) {
	candidates := make([]model.IdeaCandidate, 0, len(items))
	for i, item := range items {
		c, err := decodeCandidate(item)
		if err != nil || c == nil {
			slog.Debug("dropping invalid idea item", slog.Int("index", i))
			continue
		}
		candidates = append(candidates, *c)
	}
	return candidates, len(candidates) > 0
}

// findFirstObjectArray は "[" の直後（空白を除く）が "{" で始まり、
// 括弧が釣り合って "}" と "]" で閉じる最初の部分文字列を返す。
// 文字列リテラル内の括弧とエスケープは無視する。
func findFirstObjectArray(s string) (string, bool) {
	for start := strings.IndexByte(s, '['); start != -1; {
		if nextNonSpace(s, start+1) == '{' {
			if end, ok := matchBrackets(s, start); ok {
				return s[start : end+1], true
			}
		}

		next := strings.IndexByte(s[start+1:], '[')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrackets はs[start]の "[" に対応する "]" の位置を返す。
// 閉じ括弧の直前（空白を除く）が "}" でない場合は不一致とする。
func matchBrackets(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escape := false

	for i := start; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}
		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				if b != ']' || prevNonSpace(s, i-1) != '}' {
					return 0, false
				}
				return i, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}

func nextNonSpace(s string, from int) byte {
	for i := from; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func prevNonSpace(s string, from int) byte {
	for i := from; i >= 0; i-- {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
