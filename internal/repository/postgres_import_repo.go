package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/recipeman/internal/model"
)

// PostgresImportHistoryRepo はPostgreSQLを使用した取り込み履歴リポジトリ。
type PostgresImportHistoryRepo struct {
	db *sql.DB
}

// NewPostgresImportHistoryRepo はPostgresImportHistoryRepoを生成する。
func NewPostgresImportHistoryRepo(db *sql.DB) *PostgresImportHistoryRepo {
	return &PostgresImportHistoryRepo{db: db}
}

// Create は取り込み履歴を1件記録する。
func (r *PostgresImportHistoryRepo) Create(ctx context.Context, record *model.ImportRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_history (id, recipe_name, anylist_recipe_id, collection_id, collection_warning, status, error_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.RecipeName, record.AnyListRecipeID, record.CollectionID,
		record.CollectionWarning, record.Status, record.ErrorCode, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create import record: %w", err)
	}
	return nil
}

// ListRecent は取り込み履歴をcreated_at降順で最大limit件返す。
func (r *PostgresImportHistoryRepo) ListRecent(ctx context.Context, limit int) ([]*model.ImportRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipe_name, anylist_recipe_id, collection_id, collection_warning, status, error_code, created_at
		 FROM import_history
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import records: %w", err)
	}
	defer rows.Close()

	var records []*model.ImportRecord
	for rows.Next() {
		record := &model.ImportRecord{}
		if err := rows.Scan(
			&record.ID, &record.RecipeName, &record.AnyListRecipeID, &record.CollectionID,
			&record.CollectionWarning, &record.Status, &record.ErrorCode, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import records: %w", err)
	}

	return records, nil
}

// DeleteOlderThan は指定日時より古い履歴を削除し、削除件数を返す。
func (r *PostgresImportHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM import_history WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old import records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected, nil
}

// compile-time interface check
var _ ImportHistoryRepository = (*PostgresImportHistoryRepo)(nil)
