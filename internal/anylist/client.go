// Package anylist はAnyListリストサービスとの連携機能を提供する。
// 認証付きセッションの管理、アカウントスナップショットの取得、
// レシピの作成とコレクションへの追加を含む。
package anylist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/hitoshi/recipeman/internal/model"
)

const (
	loginPath           = "/data/validate-login"
	userDataPath        = "/data/user-data/get"
	recipeCreatePath    = "/data/user-recipe-data/create"
	recipeSavePath      = "/data/user-recipe-data/save"
	collectionAddPath   = "/data/recipe-collections/add-recipe"
	clientUserAgent     = "Recipeman/1.0"
	maxErrorBodyPreview = 512
)

// Client はAnyList APIの低レベルクライアント。
// 認証クッキーはhttpClientのCookieJarに保持される。
// エンドポイントのベースURLはテスト用に差し替え可能。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientにCookieJarが設定されていない場合は新規に割り当てる。
// 認証クッキーの保持にCookieJarが必須のため。
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			// cookiejar.Newは現実装ではエラーを返さない
			panic(fmt.Sprintf("failed to create cookie jar: %v", err))
		}
		httpClient.Jar = jar
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Login は認証情報を検証しセッションクッキーを取得する。
// 認証情報が不正な場合はANYLIST_AUTH_FAILED、
// サービス到達不能の場合はANYLIST_UNAVAILABLEを返す。
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return model.NewAnyListUnavailableError(fmt.Sprintf("リクエストの作成に失敗しました: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", clientUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("AnyListログインリクエストに失敗しました",
			slog.String("error", err.Error()),
		)
		return model.NewAnyListUnavailableError(err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn("AnyList認証に失敗しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return model.NewAnyListAuthFailedError()
	default:
		c.logger.Error("AnyListログインがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return model.NewAnyListUnavailableError(fmt.Sprintf("ログインがステータス %d を返しました", resp.StatusCode))
	}
}

// GetUserData はアカウント全体のスナップショットを取得する。
func (c *Client) GetUserData(ctx context.Context) (*UserData, error) {
	body, err := c.postJSON(ctx, userDataPath, struct{}{})
	if err != nil {
		return nil, err
	}

	var data UserData
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error("AnyListスナップショットのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewAnyListUnavailableError(fmt.Sprintf("スナップショットのパースに失敗しました: %v", err))
	}
	return &data, nil
}

// CreateRecipe はレシピをアカウントに作成する。
// 作成と保存は2段階で行われるため、このメソッドの後にSaveRecipeを呼ぶこと。
func (c *Client) CreateRecipe(ctx context.Context, recipe *Recipe) error {
	_, err := c.postJSON(ctx, recipeCreatePath, map[string]*Recipe{"recipe": recipe})
	return err
}

// SaveRecipe は作成済みレシピを永続化する。
func (c *Client) SaveRecipe(ctx context.Context, recipe *Recipe) error {
	_, err := c.postJSON(ctx, recipeSavePath, map[string]*Recipe{"recipe": recipe})
	return err
}

// AddRecipeToCollection は指定コレクションにレシピを追加する。
// マスターコレクション（全レシピ）への索引追加と、
// ユーザー指定コレクションへの追加の両方に使用する。
func (c *Client) AddRecipeToCollection(ctx context.Context, collectionID, recipeID string) error {
	payload := map[string]string{
		"collection_id": collectionID,
		"recipe_id":     recipeID,
	}
	_, err := c.postJSON(ctx, collectionAddPath, payload)
	return err
}

// postJSON はJSONボディ付きのPOSTリクエストを実行し、レスポンスボディを返す。
// 認証切れ（401/403）はANYLIST_AUTH_FAILED、その他の失敗は
// ANYLIST_UNAVAILABLEにマッピングする。
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, model.NewAnyListUnavailableError(fmt.Sprintf("リクエストのエンコードに失敗しました: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, model.NewAnyListUnavailableError(fmt.Sprintf("リクエストの作成に失敗しました: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", clientUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("AnyList APIの呼び出しに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, model.NewAnyListUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewAnyListUnavailableError(fmt.Sprintf("レスポンスの読み取りに失敗しました: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn("AnyListセッションが無効です",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewAnyListAuthFailedError()
	default:
		preview := string(body)
		if len(preview) > maxErrorBodyPreview {
			preview = preview[:maxErrorBodyPreview]
		}
		c.logger.Error("AnyList APIがエラーステータスを返しました",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("body", preview),
		)
		return nil, model.NewAnyListUnavailableError(fmt.Sprintf("%s がステータス %d を返しました", path, resp.StatusCode))
	}
}
