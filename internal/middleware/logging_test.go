package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureLogger はバッファに書き込むJSONロガーを返す。
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}

// parseLogLine はバッファの1行目のJSONログをパースする。
func parseLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("ログのパースに失敗: %v (log: %s)", err, buf.String())
	}
	return entry
}

// TestLoggingMiddleware_RecordsRequestFields はmethod/path/status/duration_msが
// ログに記録されることを検証する。
func TestLoggingMiddleware_RecordsRequestFields(t *testing.T) {
	logger, buf := captureLogger()
	mw := NewLoggingMiddleware(logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	entry := parseLogLine(t, buf)

	if entry["msg"] != "http_request" {
		t.Errorf("msg = %v, want http_request", entry["msg"])
	}
	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/api/collections" {
		t.Errorf("path = %v, want /api/collections", entry["path"])
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusOK)
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_msがログに含まれていない")
	}
}

// TestLoggingMiddleware_AuthenticatedFlag は認証済みリクエストで
// authenticated=trueが記録されることを検証する。
func TestLoggingMiddleware_AuthenticatedFlag(t *testing.T) {
	logger, buf := captureLogger()
	mw := NewLoggingMiddleware(logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, sessionRequest(http.MethodGet, "/api/imports", "session-log"))

	entry := parseLogLine(t, buf)
	if entry["authenticated"] != true {
		t.Errorf("authenticated = %v, want true", entry["authenticated"])
	}
	// セッションIDそのものはログに出力しない
	if _, ok := entry["session_id"]; ok {
		t.Error("session_idがログに含まれてはならない")
	}
}

// TestLoggingMiddleware_UnauthenticatedRequest は未認証リクエストで
// authenticatedフィールドが省略されることを検証する。
func TestLoggingMiddleware_UnauthenticatedRequest(t *testing.T) {
	logger, buf := captureLogger()
	mw := NewLoggingMiddleware(logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	entry := parseLogLine(t, buf)
	if _, ok := entry["authenticated"]; ok {
		t.Error("未認証リクエストでauthenticatedが含まれてはならない")
	}
}

// TestLoggingMiddleware_LogLevels はステータスコードに応じて
// ログレベルが変わることを検証する。
func TestLoggingMiddleware_LogLevels(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"2xxはINFO", http.StatusOK, "INFO"},
		{"4xxはWARN", http.StatusNotFound, "WARN"},
		{"5xxはERROR", http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := captureLogger()
			mw := NewLoggingMiddleware(logger)

			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			entry := parseLogLine(t, buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry["level"], tt.wantLevel)
			}
		})
	}
}

// TestLoggingMiddleware_DefaultStatus はWriteHeader未呼び出しで200が記録されることを検証する。
func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	logger, buf := captureLogger()
	mw := NewLoggingMiddleware(logger)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	entry := parseLogLine(t, buf)
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusOK)
	}
}
