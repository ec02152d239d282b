package model

import (
	"encoding/json"
	"time"
)

// ContentType はアイデアのコンテンツ種別を表す。
type ContentType string

const (
	ContentTypeBlog   ContentType = "blog"
	ContentTypeVideo  ContentType = "video"
	ContentTypeSocial ContentType = "social"
)

// ContentTypes は有効なコンテンツ種別の一覧（表示順）。
var ContentTypes = []ContentType{ContentTypeBlog, ContentTypeVideo, ContentTypeSocial}

// Valid はコンテンツ種別が定義済みの値かどうかを返す。
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeBlog, ContentTypeVideo, ContentTypeSocial:
		return true
	default:
		return false
	}
}

// Tone は生成されるアイデアの文体を表す。
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneHumorous     Tone = "humorous"
	ToneInformative  Tone = "informative"
)

// Valid はトーンが定義済みの値かどうかを返す。
func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneFriendly, ToneHumorous, ToneInformative:
		return true
	default:
		return false
	}
}

const (
	// DefaultIdeaCount は生成件数未指定時の件数。
	DefaultIdeaCount = 5
	// MinIdeaCount は生成件数の下限。
	MinIdeaCount = 1
	// MaxIdeaCount は生成件数の上限。
	MaxIdeaCount = 10
)

// GenerationRequest はアイデア生成リクエストのパラメータ。
type GenerationRequest struct {
	ContentType ContentType
	Topic       string
	Audience    string // 空の場合は対象読者の指定なし
	Tone        Tone   // 空の場合はprofessional
	Count       int    // 0の場合はDefaultIdeaCount
}

// WithDefaults は未指定のフィールドにデフォルト値を設定したコピーを返す。
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if r.Tone == "" {
		r.Tone = ToneProfessional
	}
	if r.Count == 0 {
		r.Count = DefaultIdeaCount
	}
	return r
}

// IdeaCandidate はモデル出力から抽出された未保存のアイデア。
// 永続化されることはなく、ユーザーが保存した時点でIdeaに変換される。
type IdeaCandidate struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Idea は保存済みのアイデアを表す。
// ID、OwnerID、CreatedAtは作成後に変更されない。
type Idea struct {
	ID            string
	OwnerID       string
	Title         string
	Description   string
	ContentType   ContentType
	Category      string
	Keywords      []string
	IsFavorite    bool
	ScheduledDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsScheduled は公開予定日が設定されているかどうかを返す。
func (i *Idea) IsScheduled() bool {
	return i.ScheduledDate != nil
}

// Clone はスライスとポインタを複製したコピーを返す。
func (i Idea) Clone() Idea {
	if i.Keywords != nil {
		i.Keywords = append([]string{}, i.Keywords...)
	}
	if i.ScheduledDate != nil {
		d := *i.ScheduledDate
		i.ScheduledDate = &d
	}
	return i
}

// IdeaInput はアイデア作成時の入力。
type IdeaInput struct {
	Title         string
	Description   string
	ContentType   ContentType
	Category      string
	Keywords      []string
	ScheduledDate *time.Time
}

// IdeaPatch はアイデアの部分更新を表す。
// nilのフィールドは変更しない。
type IdeaPatch struct {
	Title         *string
	Description   *string
	ContentType   *ContentType
	Category      *string
	Keywords      *[]string
	IsFavorite    *bool
	ScheduledDate OptionalTime
}

// IsEmpty は更新対象のフィールドが1つも指定されていないかどうかを返す。
func (p IdeaPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ContentType == nil &&
		p.Category == nil && p.Keywords == nil && p.IsFavorite == nil && !p.ScheduledDate.Set
}

// OptionalTime は「未指定」「明示的なnull」「値あり」を区別する日時。
type OptionalTime struct {
	Set  bool
	Time *time.Time
}

// UnmarshalJSON はJSONのnullを明示的な解除として扱う。
// フィールド自体が存在しない場合は呼ばれないためSetはfalseのまま。
func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Time = &t
	return nil
}

// IdeaTab は保存済みアイデア一覧のタブ。
type IdeaTab string

const (
	IdeaTabAll       IdeaTab = "all"
	IdeaTabFavorites IdeaTab = "favorites"
	IdeaTabScheduled IdeaTab = "scheduled"
)

// SortOrder は保存済みアイデア一覧の並び順。
type SortOrder string

const (
	SortNewest       SortOrder = "newest"
	SortOldest       SortOrder = "oldest"
	SortAlphabetical SortOrder = "alphabetical"
)

// ContentTypeAll はコンテンツ種別で絞り込まないことを示すフィルタ値。
const ContentTypeAll ContentType = "all"

// IdeaQuery は保存済みアイデアの検索条件。
// 各条件はAND結合される。
type IdeaQuery struct {
	SearchText  string
	ContentType ContentType // ContentTypeAllまたは有効なContentType
	Tab         IdeaTab
	Sort        SortOrder
}

// DefaultIdeaQuery は絞り込みなし・新しい順の検索条件を返す。
func DefaultIdeaQuery() IdeaQuery {
	return IdeaQuery{
		ContentType: ContentTypeAll,
		Tab:         IdeaTabAll,
		Sort:        SortNewest,
	}
}

// IdeaSummary はダッシュボード用の集計結果。
type IdeaSummary struct {
	Total         int
	Favorites     int
	Scheduled     int
	ByContentType map[ContentType]int
	UpcomingIdeas []Idea // 公開予定日が近い順
	RecentIdeas   []Idea // 作成日時の新しい順
}
