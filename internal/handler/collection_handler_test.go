package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/recipeman/internal/model"
)

// mockCollectionService はCollectionServiceInterfaceのテスト用実装。
type mockCollectionService struct {
	findFn func(ctx context.Context, collectionID string, forceRefresh bool) (*model.Collection, error)
	listFn func(ctx context.Context, forceRefresh bool) ([]model.Collection, error)
}

func (m *mockCollectionService) FindCollection(ctx context.Context, collectionID string, forceRefresh bool) (*model.Collection, error) {
	return m.findFn(ctx, collectionID, forceRefresh)
}

func (m *mockCollectionService) ListCollections(ctx context.Context, forceRefresh bool) ([]model.Collection, error) {
	return m.listFn(ctx, forceRefresh)
}

// newCollectionRouter はコレクションルートのみのchi.Routerを生成する。
// URLパラメータの解決にchiのルーティングコンテキストが必要なため。
func newCollectionRouter(service CollectionServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewCollectionHandler(service)
	r.Route("/api/collections", func(r chi.Router) {
		r.Get("/", h.ListCollections)
		r.Get("/{id}", h.GetCollection)
	})
	return r
}

// TestCollectionHandler_ListCollections はコレクション一覧の取得を検証する。
func TestCollectionHandler_ListCollections(t *testing.T) {
	service := &mockCollectionService{
		listFn: func(ctx context.Context, forceRefresh bool) ([]model.Collection, error) {
			return []model.Collection{
				{Identifier: "col-1", Name: "晩ごはん"},
				{Identifier: "col-2", Name: "お弁当"},
			}, nil
		},
	}
	router := newCollectionRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/collections/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Collections []collectionResponse `json:"collections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if len(body.Collections) != 2 {
		t.Fatalf("collections数 = %d, want 2", len(body.Collections))
	}
	if body.Collections[0].ID != "col-1" || body.Collections[0].Name != "晩ごはん" {
		t.Errorf("collections[0] = %+v", body.Collections[0])
	}
}

// TestCollectionHandler_ListCollections_Empty はコレクションなしで空配列が返ることを検証する。
func TestCollectionHandler_ListCollections_Empty(t *testing.T) {
	service := &mockCollectionService{
		listFn: func(ctx context.Context, forceRefresh bool) ([]model.Collection, error) {
			return []model.Collection{}, nil
		},
	}
	router := newCollectionRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/collections/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	// nullではなく[]が返ること
	if string(body["collections"]) != "[]" {
		t.Errorf("collections = %s, want []", body["collections"])
	}
}

// TestCollectionHandler_ListCollections_Refresh はrefresh=trueクエリがサービスへ伝わることを検証する。
func TestCollectionHandler_ListCollections_Refresh(t *testing.T) {
	var gotRefresh bool
	service := &mockCollectionService{
		listFn: func(ctx context.Context, forceRefresh bool) ([]model.Collection, error) {
			gotRefresh = forceRefresh
			return []model.Collection{}, nil
		},
	}
	router := newCollectionRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/collections/?refresh=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if !gotRefresh {
		t.Error("refresh=trueが強制再取得としてサービスへ渡されるべき")
	}

	// true以外の値は指定なし扱い
	req = httptest.NewRequest(http.MethodGet, "/api/collections/?refresh=1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if gotRefresh {
		t.Error("refresh=1は強制再取得として扱われないべき")
	}
}

// TestCollectionHandler_GetCollection_Found はコレクション詳細の取得を検証する。
func TestCollectionHandler_GetCollection_Found(t *testing.T) {
	service := &mockCollectionService{
		findFn: func(ctx context.Context, collectionID string, forceRefresh bool) (*model.Collection, error) {
			if collectionID != "col-1" {
				return nil, model.NewCollectionNotFoundError(collectionID)
			}
			return &model.Collection{Identifier: "col-1", Name: "晩ごはん"}, nil
		},
	}
	router := newCollectionRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/collections/col-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body.ID != "col-1" || body.Name != "晩ごはん" {
		t.Errorf("body = %+v", body)
	}
}

// TestCollectionHandler_GetCollection_NotFound は存在しないコレクションで404が返ることを検証する。
func TestCollectionHandler_GetCollection_NotFound(t *testing.T) {
	service := &mockCollectionService{
		findFn: func(ctx context.Context, collectionID string, forceRefresh bool) (*model.Collection, error) {
			return nil, model.NewCollectionNotFoundError(collectionID)
		},
	}
	router := newCollectionRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/collections/col-missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var body apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body.Code != model.ErrCodeCollectionNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeCollectionNotFound)
	}
}
