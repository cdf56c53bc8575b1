// Package model はドメインモデルを定義する。
package model

import "time"

// RecipeRecord はUI・AI抽出層から受け取るレシピ入力を表す。
// name と ingredients が作成の必須フィールド（ingredientsは空列でもよい）。
// cookTime / prepTime は秒単位。
type RecipeRecord struct {
	Name         string
	Ingredients  []string
	Instructions []string
	Note         string
	CookTime     int
	PrepTime     int
	Servings     string
	CollectionID string
}

// CreatedRecipe はAnyListに永続化されたレシピの参照を表す。
// Identifierは以後のすべての参照に使用される不透明な文字列。
type CreatedRecipe struct {
	Identifier string
	Name       string
}

// Collection はAnyList上のレシピコレクション（名前付きグルーピング）を表す。
type Collection struct {
	Identifier string
	Name       string
}

// ImportResult はインポート処理の結果を表す。
// レシピ作成成功後のコレクション追加失敗は全体を失敗とせず、
// CollectionWarningに警告として保持する（作成が保証、振り分けは利便）。
type ImportResult struct {
	RecipeID          string
	Name              string
	Created           bool
	CollectionWarning string
}

// インポート履歴のステータス値。
const (
	// ImportStatusCreated はレシピ作成に成功したことを示す。
	ImportStatusCreated = "created"
	// ImportStatusFailed はレシピ作成に失敗したことを示す。
	ImportStatusFailed = "failed"
)

// ImportRecord はインポート試行の結果メタデータを表す。
// レシピの内容（材料・手順）は保存しない。記録はあくまで監査用であり、
// レシピデータのシステムオブレコードはAnyList側にある。
type ImportRecord struct {
	ID                string
	RecipeName        string
	AnyListRecipeID   string
	CollectionID      string
	CollectionWarning string
	Status            string
	ErrorCode         string
	CreatedAt         time.Time
}
