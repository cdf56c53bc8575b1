package anylist

import (
	"context"
	"log/slog"

	"github.com/hitoshi/recipeman/internal/model"
)

// CollectionIndex はアカウントのレシピコレクションを検索する。
// スナップショットの生の構造の走査をこの型に閉じ込め、
// 呼び出し側にはmodel.Collectionのみを公開する。
type CollectionIndex struct {
	session *Session
}

// NewCollectionIndex はCollectionIndexの新しいインスタンスを生成する。
func NewCollectionIndex(session *Session) *CollectionIndex {
	return &CollectionIndex{session: session}
}

// FindCollection は指定IDのユーザー定義コレクションを返す。
// 見つからない場合はCOLLECTION_NOT_FOUNDを返す。
// マスターコレクション（全レシピ）は検索対象に含まれない。
// forceRefreshを指定するとキャッシュを無視してスナップショットを再取得する。
func (ci *CollectionIndex) FindCollection(ctx context.Context, collectionID string, forceRefresh bool) (*model.Collection, error) {
	data, err := ci.session.UserData(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	for _, c := range data.RecipeData.Collections {
		if c.Identifier == collectionID {
			return &model.Collection{Identifier: c.Identifier, Name: c.Name}, nil
		}
	}
	return nil, model.NewCollectionNotFoundError(collectionID)
}

// ListCollections はユーザー定義コレクションの一覧を返す。
// コレクションが1つも存在しない場合は空スライスを返す。
func (ci *CollectionIndex) ListCollections(ctx context.Context, forceRefresh bool) ([]model.Collection, error) {
	data, err := ci.session.UserData(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	collections := make([]model.Collection, 0, len(data.RecipeData.Collections))
	for _, c := range data.RecipeData.Collections {
		collections = append(collections, model.Collection{Identifier: c.Identifier, Name: c.Name})
	}
	return collections, nil
}

// Attacher は作成済みレシピをユーザー定義コレクションへ追加する。
type Attacher struct {
	session *Session
	client  *Client
	logger  *slog.Logger
}

// NewAttacher はAttacherの新しいインスタンスを生成する。
func NewAttacher(session *Session, client *Client, logger *slog.Logger) *Attacher {
	return &Attacher{
		session: session,
		client:  client,
		logger:  logger,
	}
}

// AttachToCollection は指定コレクションにレシピを追加する。
// 直前のレシピ作成を反映した最新状態で判定するため、
// スナップショットを強制再取得してからコレクションの存在を確認する。
// コレクションが存在しない場合はCOLLECTION_NOT_FOUNDを返す。
func (a *Attacher) AttachToCollection(ctx context.Context, recipeID, collectionID string) error {
	data, err := a.session.UserData(ctx, true)
	if err != nil {
		return err
	}

	found := false
	for _, c := range data.RecipeData.Collections {
		if c.Identifier == collectionID {
			found = true
			break
		}
	}
	if !found {
		return model.NewCollectionNotFoundError(collectionID)
	}

	if err := a.client.AddRecipeToCollection(ctx, collectionID, recipeID); err != nil {
		return err
	}

	a.logger.Info("レシピをコレクションに追加しました",
		slog.String("recipe_id", recipeID),
		slog.String("collection_id", collectionID),
	)
	return nil
}
