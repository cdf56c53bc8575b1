package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/hitoshi/recipeman/internal/extract"
	"github.com/hitoshi/recipeman/internal/model"
)

// ScanServiceInterface はスキャンハンドラーが必要とするサービスインターフェース。
type ScanServiceInterface interface {
	// ScanUpload はアップロードされた画像からレシピを抽出する。
	ScanUpload(ctx context.Context, imageData []byte) (*extract.ExtractedRecipe, error)
	// ScanImageURL はURLで指定された画像を取得しレシピを抽出する。
	ScanImageURL(ctx context.Context, rawURL string) (*extract.ExtractedRecipe, error)
}

// ScanHandler はレシピ画像スキャンのHTTPハンドラー。
// multipart/form-dataによる画像アップロードと、JSONボディによる
// 画像URL指定の両方を受け付ける。
type ScanHandler struct {
	service       ScanServiceInterface
	uploadMaxSize int64
}

// NewScanHandler はScanHandlerを生成する。
func NewScanHandler(service ScanServiceInterface, uploadMaxSize int64) *ScanHandler {
	return &ScanHandler{
		service:       service,
		uploadMaxSize: uploadMaxSize,
	}
}

// scanURLRequest は画像URL指定スキャンのリクエストボディ。
type scanURLRequest struct {
	ImageURL string `json:"image_url"`
}

// scanResponse はスキャン結果のAPIレスポンス。
// 抽出結果はそのままレシピ取り込みリクエストのボディとして使用できる。
type scanResponse struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Note         string   `json:"note"`
	CookTime     int      `json:"cook_time"`
	PrepTime     int      `json:"prep_time"`
	Servings     string   `json:"servings"`
}

// Scan は画像からレシピを抽出する。
// POST /api/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "Content-Typeヘッダーの解析に失敗しました。",
			Category: "validation",
			Action:   "multipart/form-dataまたはapplication/jsonでリクエストしてください。",
		})
		return
	}

	switch mediaType {
	case "multipart/form-data":
		h.scanUpload(w, r)
	case "application/json":
		h.scanImageURL(w, r)
	default:
		writeAPIErrorResponse(w, http.StatusUnsupportedMediaType, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "サポートされないContent-Typeです。",
			Category: "validation",
			Action:   "multipart/form-dataまたはapplication/jsonでリクエストしてください。",
		})
	}
}

// scanUpload はmultipartアップロードされた画像をスキャンする。
// multipartのフレーミング分を考慮し、ボディ全体の上限は画像上限より広めに取る。
func (h *ScanHandler) scanUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize+64*1024)

	file, _, err := r.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewImageTooLargeError(h.uploadMaxSize))
			return
		}
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "imageフィールドの読み取りに失敗しました。",
			Category: "validation",
			Action:   "imageフィールドに画像ファイルを指定してください。",
		})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded image", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "画像データの読み取りに失敗しました。",
			Category: "validation",
			Action:   "画像ファイルを確認して再度お試しください。",
		})
		return
	}

	recipe, err := h.service.ScanUpload(r.Context(), imageData)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeScanResponse(w, recipe)
}

// scanImageURL はJSONボディで指定されたURLの画像をスキャンする。
func (h *ScanHandler) scanImageURL(w http.ResponseWriter, r *http.Request) {
	var req scanURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.ImageURL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidURLError("image_urlが空です"))
		return
	}

	recipe, err := h.service.ScanImageURL(r.Context(), req.ImageURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeScanResponse(w, recipe)
}

// writeScanResponse は抽出結果をAPIレスポンス形式で書き込む。
func writeScanResponse(w http.ResponseWriter, recipe *extract.ExtractedRecipe) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scanResponse{
		Name:         recipe.Name,
		Ingredients:  recipe.Ingredients,
		Instructions: recipe.Instructions,
		Note:         recipe.Notes,
		CookTime:     recipe.CookTime,
		PrepTime:     recipe.PrepTime,
		Servings:     recipe.Servings,
	})
}
