// Package importer はレシピ取り込みのオーケストレーションを提供する。
// 入力検証、レシピ作成、コレクション追加、履歴記録を1つの操作として調整する。
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/recipeman/internal/metrics"
	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/repository"
)

// RecipeCreator はレシピ作成のインターフェース。
type RecipeCreator interface {
	CreateRecipe(ctx context.Context, record *model.RecipeRecord) (*model.CreatedRecipe, error)
}

// CollectionAttacher はコレクション追加のインターフェース。
type CollectionAttacher interface {
	AttachToCollection(ctx context.Context, recipeID, collectionID string) error
}

// Service はレシピ取り込みのオーケストレーター。
type Service struct {
	creator   RecipeCreator
	attacher  CollectionAttacher
	history   repository.ImportHistoryRepository
	collector metrics.MetricsCollector
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	creator RecipeCreator,
	attacher CollectionAttacher,
	history repository.ImportHistoryRepository,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	return &Service{
		creator:   creator,
		attacher:  attacher,
		history:   history,
		collector: collector,
		logger:    logger,
	}
}

// Import はレシピを検証し、作成し、必要に応じてコレクションへ追加する。
//
// レシピ作成の失敗は全体の失敗となる。
// コレクション追加の失敗はレシピ作成済みの事実を優先し、
// 警告（CollectionWarning）に降格して成功レスポンスに含める。
// 履歴記録の失敗は取り込み結果に影響させない。
func (s *Service) Import(ctx context.Context, record *model.RecipeRecord) (*model.ImportResult, error) {
	if err := validateRecord(record); err != nil {
		s.collector.RecordImportFailure(errorCode(err))
		return nil, err
	}

	created, err := s.creator.CreateRecipe(ctx, record)
	if err != nil {
		s.collector.RecordImportFailure(errorCode(err))
		s.recordHistory(ctx, &model.ImportRecord{
			RecipeName:   record.Name,
			CollectionID: record.CollectionID,
			Status:       model.ImportStatusFailed,
			ErrorCode:    errorCode(err),
		})
		return nil, err
	}

	warning := ""
	if record.CollectionID != "" {
		if attachErr := s.attacher.AttachToCollection(ctx, created.Identifier, record.CollectionID); attachErr != nil {
			warning = fmt.Sprintf("レシピは作成されましたが、コレクションへの追加に失敗しました: %s", attachErr.Error())
			s.collector.RecordCollectionWarning()
			s.logger.Warn("コレクション追加を警告に降格しました",
				slog.String("recipe_id", created.Identifier),
				slog.String("collection_id", record.CollectionID),
				slog.String("error", attachErr.Error()),
			)
		}
	}

	s.collector.RecordImportSuccess()
	s.recordHistory(ctx, &model.ImportRecord{
		RecipeName:        created.Name,
		AnyListRecipeID:   created.Identifier,
		CollectionID:      record.CollectionID,
		CollectionWarning: warning,
		Status:            model.ImportStatusCreated,
	})

	s.logger.Info("レシピを取り込みました",
		slog.String("recipe_id", created.Identifier),
		slog.String("name", created.Name),
		slog.Bool("has_warning", warning != ""),
	)

	return &model.ImportResult{
		RecipeID:          created.Identifier,
		Name:              created.Name,
		Created:           true,
		CollectionWarning: warning,
	}, nil
}

// History は取り込み履歴をcreated_at降順で返す。
func (s *Service) History(ctx context.Context, limit int) ([]*model.ImportRecord, error) {
	records, err := s.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("取り込み履歴の取得に失敗しました: %w", err)
	}
	if records == nil {
		records = []*model.ImportRecord{}
	}
	return records, nil
}

// recordHistory は履歴をベストエフォートで記録する。
// 記録失敗は警告ログに留め、取り込み結果へ伝播させない。
func (s *Service) recordHistory(ctx context.Context, record *model.ImportRecord) {
	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	if err := s.history.Create(ctx, record); err != nil {
		s.logger.Warn("取り込み履歴の記録に失敗しました",
			slog.String("recipe_name", record.RecipeName),
			slog.String("error", err.Error()),
		)
	}
}

// validateRecord は取り込みリクエストの入力を検証する。
// レシピ名は空白のみも不可。材料リストはフィールドの存在が必須で、
// 空配列は許容される。
func validateRecord(record *model.RecipeRecord) error {
	if strings.TrimSpace(record.Name) == "" {
		return model.NewRecipeNameRequiredError()
	}
	if record.Ingredients == nil {
		return model.NewIngredientsRequiredError()
	}
	return nil
}

// errorCode はメトリクスと履歴用のエラーコードを取り出す。
func errorCode(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "UNKNOWN"
}
