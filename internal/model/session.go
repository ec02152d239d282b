package model

import "time"

// Session はユーザーのログインセッションを表す。
// セッションは外部の認証サービスが発行し、本サービスは参照と期限切れ削除のみを行う。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired はセッションが指定時刻の時点で期限切れかどうかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
