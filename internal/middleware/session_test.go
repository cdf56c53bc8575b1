package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/recipeman/internal/model"
)

// mockSessionRepository はSessionFinderのテスト用実装。
type mockSessionRepository struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn == nil {
		return nil, nil
	}
	return m.findByIDFn(ctx, id)
}

// TestSessionMiddleware_ValidSession_InjectsSessionID は有効なセッションで
// セッションIDがコンテキストに注入されることを検証する。
func TestSessionMiddleware_ValidSession_InjectsSessionID(t *testing.T) {
	repo := &mockSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        "valid-session",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	mw := NewSessionMiddleware(repo)

	var capturedSessionID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := SessionIDFromContext(r.Context())
		if err != nil {
			t.Errorf("SessionIDFromContextがエラーを返した: %v", err)
		}
		capturedSessionID = sessionID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if capturedSessionID != "valid-session" {
		t.Errorf("sessionID = %q, want %q", capturedSessionID, "valid-session")
	}
}

// TestSessionMiddleware_NoCookie_Returns401 はCookieなしで401が返ることを検証する。
func TestSessionMiddleware_NoCookie_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(&mockSessionRepository{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestSessionMiddleware_SessionNotFound_Returns401 は存在しないセッションで401が返ることを検証する。
func TestSessionMiddleware_SessionNotFound_Returns401(t *testing.T) {
	repo := &mockSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(repo)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "expired-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestSessionIDFromContext_NoValue_ReturnsError はコンテキストに値がない場合にエラーを返すことを検証する。
func TestSessionIDFromContext_NoValue_ReturnsError(t *testing.T) {
	ctx := context.Background()
	_, err := SessionIDFromContext(ctx)
	if err == nil {
		t.Error("expected error for missing session ID")
	}
}

// TestSessionIDFromContext_ValidValue_ReturnsSessionID はコンテキストの値が取得できることを検証する。
func TestSessionIDFromContext_ValidValue_ReturnsSessionID(t *testing.T) {
	ctx := ContextWithSessionID(context.Background(), "session-abc")
	sessionID, err := SessionIDFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionID != "session-abc" {
		t.Errorf("sessionID = %q, want %q", sessionID, "session-abc")
	}
}
