// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, anylist, extract, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeRecipeNameRequired   = "RECIPE_NAME_REQUIRED"
	ErrCodeIngredientsRequired  = "INGREDIENTS_REQUIRED"
	ErrCodeAnyListAuthFailed    = "ANYLIST_AUTH_FAILED"
	ErrCodeAnyListUnavailable   = "ANYLIST_UNAVAILABLE"
	ErrCodeCollectionNotFound   = "COLLECTION_NOT_FOUND"
	ErrCodeExtractFailed        = "EXTRACT_FAILED"
	ErrCodeImageTooLarge        = "IMAGE_TOO_LARGE"
	ErrCodeUnsupportedImageType = "UNSUPPORTED_IMAGE_TYPE"
	ErrCodeInvalidURL           = "INVALID_URL"
	ErrCodeSSRFBlocked          = "SSRF_BLOCKED"
	ErrCodeFetchFailed          = "FETCH_FAILED"
)

// NewRecipeNameRequiredError はレシピ名未入力エラーを生成する。
func NewRecipeNameRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeRecipeNameRequired,
		Message:  "レシピ名が入力されていません。",
		Category: "validation",
		Action:   "レシピ名を入力してから再度お試しください。",
	}
}

// NewIngredientsRequiredError は材料リスト欠落エラーを生成する。
// 空の材料リストは許容されるが、フィールド自体の欠落はエラーとする。
func NewIngredientsRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeIngredientsRequired,
		Message:  "材料リストが含まれていません。",
		Category: "validation",
		Action:   "材料リスト（空でも可）を含めてリクエストしてください。",
	}
}

// NewAnyListAuthFailedError はAnyList認証失敗エラーを生成する。
func NewAnyListAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAnyListAuthFailed,
		Message:  "AnyListへのログインに失敗しました。",
		Category: "anylist",
		Action:   "サーバーに設定されたAnyListの認証情報を確認してください。",
	}
}

// NewAnyListUnavailableError はAnyList通信失敗エラーを生成する。
func NewAnyListUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeAnyListUnavailable,
		Message:  fmt.Sprintf("AnyListとの通信に失敗しました: %s", reason),
		Category: "anylist",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewCollectionNotFoundError はコレクション未検出エラーを生成する。
func NewCollectionNotFoundError(collectionID string) *APIError {
	return &APIError{
		Code:     ErrCodeCollectionNotFound,
		Message:  fmt.Sprintf("指定されたコレクションが見つかりません: %s", collectionID),
		Category: "anylist",
		Action:   "コレクション一覧を再読み込みして選択し直してください。",
	}
}

// NewExtractFailedError はAI抽出失敗エラーを生成する。
func NewExtractFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeExtractFailed,
		Message:  fmt.Sprintf("画像からのレシピ抽出に失敗しました: %s", reason),
		Category: "extract",
		Action:   "画像の向きや明るさを確認し、再度撮影してお試しください。",
	}
}

// NewImageTooLargeError は画像サイズ超過エラーを生成する。
func NewImageTooLargeError(maxBytes int64) *APIError {
	return &APIError{
		Code:     ErrCodeImageTooLarge,
		Message:  fmt.Sprintf("画像サイズが上限（%dバイト）を超えています。", maxBytes),
		Category: "validation",
		Action:   "画像を縮小してから再度アップロードしてください。",
	}
}

// NewUnsupportedImageTypeError は非対応画像形式エラーを生成する。
func NewUnsupportedImageTypeError(mimeType string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedImageType,
		Message:  fmt.Sprintf("対応していない画像形式です: %s", mimeType),
		Category: "validation",
		Action:   "JPEG、PNG、WebP、GIFのいずれかの形式でアップロードしてください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewFetchFailedError は画像取得失敗エラーを生成する。
func NewFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFetchFailed,
		Message:  fmt.Sprintf("画像URLの取得に失敗しました: %s", reason),
		Category: "validation",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}
