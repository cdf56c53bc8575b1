package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/recipeman/internal/auth"
	"github.com/hitoshi/recipeman/internal/model"
)

// mockAuthService はAuthServiceInterfaceのテスト用実装。
type mockAuthService struct {
	loginFn       func(ctx context.Context, password string) (*model.Session, error)
	logoutFn      func(ctx context.Context, sessionID string) error
	findSessionFn func(ctx context.Context, sessionID string) (*model.Session, error)
}

func (m *mockAuthService) Login(ctx context.Context, password string) (*model.Session, error) {
	return m.loginFn(ctx, password)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn == nil {
		return nil
	}
	return m.logoutFn(ctx, sessionID)
}

func (m *mockAuthService) FindSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if m.findSessionFn == nil {
		return nil, nil
	}
	return m.findSessionFn(ctx, sessionID)
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieSecure:  false,
		SessionMaxAge: 3600,
	}
}

// findCookie はレスポンスから指定した名前のCookieを探す。
func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TestAuthHandler_Login_Success は正しいパスワードでセッションCookieが発行されることを検証する。
func TestAuthHandler_Login_Success(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, password string) (*model.Session, error) {
			if password != "correct-password" {
				return nil, auth.ErrInvalidPassword
			}
			return &model.Session{
				ID:        "new-session-id",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"correct-password"}`))
	w := httptest.NewRecorder()
	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cookie := findCookie(t, resp, "session_id")
	if cookie == nil {
		t.Fatal("session_id Cookieが設定されていない")
	}
	if cookie.Value != "new-session-id" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "new-session-id")
	}
	if !cookie.HttpOnly {
		t.Error("session CookieはHttpOnlyであるべき")
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body["authenticated"] != true {
		t.Errorf("authenticated = %v, want true", body["authenticated"])
	}
}

// TestAuthHandler_Login_WrongPassword は誤ったパスワードで401が返ることを検証する。
func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, password string) (*model.Session, error) {
			return nil, auth.ErrInvalidPassword
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"wrong"}`))
	w := httptest.NewRecorder()
	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if cookie := findCookie(t, resp, "session_id"); cookie != nil {
		t.Error("認証失敗時にsession_id Cookieが設定されてはならない")
	}
}

// TestAuthHandler_Login_InvalidBody は不正なJSONで400が返ることを検証する。
func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, password string) (*model.Session, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// TestAuthHandler_Logout はログアウトでセッションが破棄されCookieがクリアされることを検証する。
func TestAuthHandler_Logout(t *testing.T) {
	var deletedSessionID string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deletedSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-to-delete"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if deletedSessionID != "sess-to-delete" {
		t.Errorf("deleted session = %q, want %q", deletedSessionID, "sess-to-delete")
	}

	cookie := findCookie(t, resp, "session_id")
	if cookie == nil {
		t.Fatal("クリア用のsession_id Cookieが設定されていない")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", cookie.MaxAge)
	}
}

// TestAuthHandler_Logout_NoCookie はCookieなしのログアウトでも204が返ることを検証する。
func TestAuthHandler_Logout_NoCookie(t *testing.T) {
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			t.Fatal("service should not be called")
			return nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

// TestAuthHandler_Me_Authenticated は有効セッションでauthenticated=trueが返ることを検証する。
func TestAuthHandler_Me_Authenticated(t *testing.T) {
	service := &mockAuthService{
		findSessionFn: func(ctx context.Context, sessionID string) (*model.Session, error) {
			return &model.Session{
				ID:        sessionID,
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	var body map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body["authenticated"] != true {
		t.Errorf("authenticated = %v, want true", body["authenticated"])
	}
}

// TestAuthHandler_Me_NoSession はセッションなしでauthenticated=falseが返ることを検証する。
func TestAuthHandler_Me_NoSession(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body["authenticated"] != false {
		t.Errorf("authenticated = %v, want false", body["authenticated"])
	}
}

// TestAuthHandler_Me_ExpiredSession は期限切れセッションでauthenticated=falseが返ることを検証する。
func TestAuthHandler_Me_ExpiredSession(t *testing.T) {
	service := &mockAuthService{
		findSessionFn: func(ctx context.Context, sessionID string) (*model.Session, error) {
			return nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "expired"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	var body map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	if body["authenticated"] != false {
		t.Errorf("authenticated = %v, want false", body["authenticated"])
	}
}
