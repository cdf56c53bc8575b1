package anylist

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/recipeman/internal/model"
)

// Creator はレシピをアカウントに作成する。
// 作成と保存の2段階呼び出しと、マスターコレクションへの索引追加を行う。
type Creator struct {
	session *Session
	client  *Client
	logger  *slog.Logger
}

// NewCreator はCreatorの新しいインスタンスを生成する。
func NewCreator(session *Session, client *Client, logger *slog.Logger) *Creator {
	return &Creator{
		session: session,
		client:  client,
		logger:  logger,
	}
}

// CreateRecipe はレシピを作成し、生成されたレシピIDを返す。
//
// 処理の流れ:
//  1. 認証を保証する（未認証の場合のみログイン）
//  2. ユーザーIDを解決する（見つからなくても処理は継続する）
//  3. スナップショットを強制再取得する
//  4. 材料行を構造化パースせず生テキストとして包む
//  5. 省略されたフィールドに既定値を適用してペイロードを構築する
//  6. 作成と保存を2段階で呼び出す
//  7. マスターコレクションにレシピIDを索引追加する
//
// 手順7でマスターコレクションが見つからない場合はスナップショットを
// 1回だけ再取得して再判定し、それでも見つからなければ警告ログを残して
// スキップする。レシピ自体は作成済みのため全体は成功として扱う。
func (cr *Creator) CreateRecipe(ctx context.Context, record *model.RecipeRecord) (*model.CreatedRecipe, error) {
	if err := cr.session.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	userID, err := cr.session.ResolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	data, err := cr.session.UserData(ctx, true)
	if err != nil {
		return nil, err
	}

	recipe := buildRecipePayload(record)

	if err := cr.client.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	if err := cr.client.SaveRecipe(ctx, recipe); err != nil {
		return nil, err
	}

	cr.logger.Info("レシピを作成しました",
		slog.String("recipe_id", recipe.Identifier),
		slog.String("name", recipe.Name),
		slog.String("user_id", userID),
	)

	cr.repairMasterIndex(ctx, data, recipe.Identifier)

	return &model.CreatedRecipe{
		Identifier: recipe.Identifier,
		Name:       recipe.Name,
	}, nil
}

// repairMasterIndex は作成済みレシピをマスターコレクション（全レシピ）に
// 索引追加する。索引追加の失敗はレシピ作成の成否に影響させない。
func (cr *Creator) repairMasterIndex(ctx context.Context, data *UserData, recipeID string) {
	master := data.RecipeData.AllRecipesCollection

	// スナップショットが索引追加前の状態で取得された可能性があるため、
	// 1回だけ再取得して再判定する
	if master == nil {
		refreshed, err := cr.session.UserData(ctx, true)
		if err != nil {
			cr.logger.Warn("マスターコレクション再確認のスナップショット取得に失敗しました",
				slog.String("recipe_id", recipeID),
				slog.String("error", err.Error()),
			)
			return
		}
		master = refreshed.RecipeData.AllRecipesCollection
	}

	if master == nil {
		cr.logger.Warn("マスターコレクションが見つからないため索引追加をスキップします",
			slog.String("recipe_id", recipeID),
		)
		return
	}

	if err := cr.client.AddRecipeToCollection(ctx, master.Identifier, recipeID); err != nil {
		cr.logger.Warn("マスターコレクションへの索引追加に失敗しました",
			slog.String("recipe_id", recipeID),
			slog.String("collection_id", master.Identifier),
			slog.String("error", err.Error()),
		)
	}
}

// buildRecipePayload はRecipeRecordからワイヤー表現を構築する。
// レシピIDはクライアント側でUUIDとして生成する。
// 省略されたフィールドには既定値（note=""、時間=0、servings=""、
// 手順=空配列）を適用する。
func buildRecipePayload(record *model.RecipeRecord) *Recipe {
	ingredients := make([]RecipeIngredient, 0, len(record.Ingredients))
	for _, line := range record.Ingredients {
		ingredients = append(ingredients, RecipeIngredient{
			RawIngredient: line,
			Name:          line,
		})
	}

	steps := record.Instructions
	if steps == nil {
		steps = []string{}
	}

	return &Recipe{
		Identifier:        uuid.NewString(),
		Name:              record.Name,
		Note:              record.Note,
		PreparationSteps:  steps,
		Ingredients:       ingredients,
		CookTime:          record.CookTime,
		PrepTime:          record.PrepTime,
		Servings:          record.Servings,
		CreationTimestamp: time.Now().Unix(),
	}
}
