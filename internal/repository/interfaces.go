// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/recipeman/internal/model"
)

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// ImportHistoryRepository はレシピ取り込み履歴の永続化インターフェース。
// 履歴にはメタデータのみを保存し、レシピ本文（材料・手順）は保存しない。
type ImportHistoryRepository interface {
	// Create は取り込み履歴を1件記録する。
	Create(ctx context.Context, record *model.ImportRecord) error

	// ListRecent は取り込み履歴をcreated_at降順で最大limit件返す。
	ListRecent(ctx context.Context, limit int) ([]*model.ImportRecord, error)

	// DeleteOlderThan は指定日時より古い履歴を削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
