package anylist

// SharedUser はリストを共有しているユーザーのワイヤー表現。
type SharedUser struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// ShoppingList は買い物リストのワイヤー表現。
type ShoppingList struct {
	Identifier  string       `json:"identifier"`
	Name        string       `json:"name"`
	SharedUsers []SharedUser `json:"shared_users"`
}

// RecipeCollection はレシピコレクションのワイヤー表現。
// AllRecipesCollection（全レシピを束ねるマスターコレクション）と
// ユーザー定義コレクションの両方に使用される。
type RecipeCollection struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	RecipeIDs  []string `json:"recipe_ids"`
}

// RecipeData はアカウントのレシピ関連データのワイヤー表現。
type RecipeData struct {
	RecipeDataID         string             `json:"recipe_data_id"`
	AllRecipesCollection *RecipeCollection  `json:"all_recipes_collection"`
	Collections          []RecipeCollection `json:"collections"`
}

// UserData はアカウント全体のスナップショット。
// 認証済みセッションで取得し、リスト共有ユーザーとレシピコレクションの
// 走査に使用する。
type UserData struct {
	ShoppingLists []ShoppingList `json:"shopping_lists"`
	RecipeData    RecipeData     `json:"recipe_data"`
}

// RecipeIngredient はレシピ材料のワイヤー表現。
// 抽出された材料行は構造化パースを行わず、rawIngredientとnameの両方に
// 同じテキストを設定して送信する。
type RecipeIngredient struct {
	RawIngredient string `json:"rawIngredient"`
	Name          string `json:"name"`
	Quantity      string `json:"quantity"`
	Note          string `json:"note"`
}

// Recipe はレシピ作成・保存リクエストのワイヤー表現。
type Recipe struct {
	Identifier        string             `json:"identifier"`
	Name              string             `json:"name"`
	Note              string             `json:"note"`
	PreparationSteps  []string           `json:"preparation_steps"`
	Ingredients       []RecipeIngredient `json:"ingredients"`
	CookTime          int                `json:"cook_time"`
	PrepTime          int                `json:"prep_time"`
	Servings          string             `json:"servings"`
	CreationTimestamp int64              `json:"creation_timestamp"`
}
