package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/recipeman/internal/model"
)

// CollectionServiceInterface はコレクションハンドラーが必要とするサービスインターフェース。
type CollectionServiceInterface interface {
	// FindCollection は識別子でコレクションを検索する。
	FindCollection(ctx context.Context, collectionID string, forceRefresh bool) (*model.Collection, error)
	// ListCollections はユーザー定義コレクションの一覧を返す。
	ListCollections(ctx context.Context, forceRefresh bool) ([]model.Collection, error)
}

// CollectionHandler はAnyListレシピコレクション参照のHTTPハンドラー。
type CollectionHandler struct {
	service CollectionServiceInterface
}

// NewCollectionHandler はCollectionHandlerを生成する。
func NewCollectionHandler(service CollectionServiceInterface) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// collectionResponse はコレクション情報のAPIレスポンス。
type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// refreshQueryParam はrefresh=trueクエリの有無を返す。
// true以外の値は指定なしとして扱う。
func refreshQueryParam(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}

// ListCollections はユーザー定義コレクションの一覧を返す。
// GET /api/collections?refresh=true
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.ListCollections(r.Context(), refreshQueryParam(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]collectionResponse, 0, len(collections))
	for _, c := range collections {
		responses = append(responses, collectionResponse{
			ID:   c.Identifier,
			Name: c.Name,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"collections": responses})
}

// GetCollection はコレクション詳細を取得する。
// GET /api/collections/:id?refresh=true
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "id")

	collection, err := h.service.FindCollection(r.Context(), collectionID, refreshQueryParam(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collectionResponse{
		ID:   collection.Identifier,
		Name: collection.Name,
	})
}
