package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/recipeman/internal/model"
)

// ImportServiceInterface はインポートハンドラーが必要とするサービスインターフェース。
type ImportServiceInterface interface {
	// Import はレシピを検証しAnyListに作成する。
	Import(ctx context.Context, record *model.RecipeRecord) (*model.ImportResult, error)
	// History は直近のインポート履歴を新しい順に返す。
	History(ctx context.Context, limit int) ([]*model.ImportRecord, error)
}

// ImportHandler はレシピ取り込みと履歴参照のHTTPハンドラー。
type ImportHandler struct {
	service ImportServiceInterface
}

// NewImportHandler はImportHandlerを生成する。
func NewImportHandler(service ImportServiceInterface) *ImportHandler {
	return &ImportHandler{service: service}
}

// importRecipeRequest はレシピ取り込みリクエストのボディ。
// ingredientsフィールドの欠落（null）と空配列は区別する。
// 欠落はバリデーションエラー、空配列は材料なしレシピとして許可する。
type importRecipeRequest struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Note         string   `json:"note"`
	CookTime     int      `json:"cook_time"`
	PrepTime     int      `json:"prep_time"`
	Servings     string   `json:"servings"`
	CollectionID string   `json:"collection_id"`
}

// importRecipeResponse はレシピ取り込みのAPIレスポンス。
type importRecipeResponse struct {
	RecipeID          string `json:"recipe_id"`
	Name              string `json:"name"`
	Created           bool   `json:"created"`
	CollectionWarning string `json:"collection_warning,omitempty"`
}

// importRecordResponse はインポート履歴1件のAPIレスポンス。
type importRecordResponse struct {
	ID                string    `json:"id"`
	RecipeName        string    `json:"recipe_name"`
	AnyListRecipeID   string    `json:"anylist_recipe_id,omitempty"`
	CollectionID      string    `json:"collection_id,omitempty"`
	CollectionWarning string    `json:"collection_warning,omitempty"`
	Status            string    `json:"status"`
	ErrorCode         string    `json:"error_code,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ImportRecipe はレシピをAnyListに取り込む。
// POST /api/recipes
func (h *ImportHandler) ImportRecipe(w http.ResponseWriter, r *http.Request) {
	var req importRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	record := &model.RecipeRecord{
		Name:         req.Name,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Note:         req.Note,
		CookTime:     req.CookTime,
		PrepTime:     req.PrepTime,
		Servings:     req.Servings,
		CollectionID: req.CollectionID,
	}

	result, err := h.service.Import(r.Context(), record)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(importRecipeResponse{
		RecipeID:          result.RecipeID,
		Name:              result.Name,
		Created:           result.Created,
		CollectionWarning: result.CollectionWarning,
	})
}

// historyDefaultLimit は履歴取得のデフォルト件数。
const historyDefaultLimit = 50

// historyMaxLimit は履歴取得の最大件数。
const historyMaxLimit = 200

// ListHistory はインポート履歴を新しい順に返す。
// GET /api/imports?limit=50
func (h *ImportHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := historyDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "limitは1以上の整数で指定してください。",
				Category: "validation",
				Action:   "limitパラメータを確認してください。",
			})
			return
		}
		limit = parsed
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]importRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, importRecordResponse{
			ID:                record.ID,
			RecipeName:        record.RecipeName,
			AnyListRecipeID:   record.AnyListRecipeID,
			CollectionID:      record.CollectionID,
			CollectionWarning: record.CollectionWarning,
			Status:            record.Status,
			ErrorCode:         record.ErrorCode,
			CreatedAt:         record.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"imports": responses})
}

// --- ヘルパー関数 ---

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeRecipeNameRequired, model.ErrCodeIngredientsRequired:
		return http.StatusBadRequest
	case model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeCollectionNotFound:
		return http.StatusNotFound
	case model.ErrCodeAnyListAuthFailed, model.ErrCodeAnyListUnavailable:
		return http.StatusBadGateway
	case model.ErrCodeExtractFailed, model.ErrCodeFetchFailed:
		return http.StatusBadGateway
	case model.ErrCodeImageTooLarge:
		return http.StatusRequestEntityTooLarge
	case model.ErrCodeUnsupportedImageType:
		return http.StatusUnsupportedMediaType
	case model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
