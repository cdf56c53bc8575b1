package model

import "time"

// Session は管理UIのログインセッションを表す。
// 単一オペレーター向けデプロイのため、ユーザーとの紐付けは持たない。
type Session struct {
	ID        string
	ExpiresAt time.Time
	CreatedAt time.Time
}
