package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/repository"
)

// fakeSessionRepo はSessionRepositoryのテスト用実装。
type fakeSessionRepo struct {
	sessions  map[string]*model.Session
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session, ok := f.sessions[id]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return session, nil
}

func (f *fakeSessionRepo) DeleteByID(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

func newTestService(repo repository.SessionRepository) *Service {
	return NewService(repo, ServiceConfig{
		AppPassword:   "correct-password",
		SessionMaxAge: 3600,
	})
}

func TestLogin_CorrectPassword(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(repo)

	session, err := svc.Login(context.Background(), "correct-password")
	if err != nil {
		t.Fatalf("Loginがエラーを返した: %v", err)
	}
	if session.ID == "" {
		t.Error("セッションIDが空")
	}
	// 32バイトのhexエンコードで64文字
	if len(session.ID) != 64 {
		t.Errorf("セッションID長 = %d, want 64", len(session.ID))
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("発行直後のセッションが期限切れ")
	}
	if _, ok := repo.sessions[session.ID]; !ok {
		t.Error("セッションが永続化されていない")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "wrong-password")
	if err == nil {
		t.Fatal("不正なパスワードでエラーが返らなかった")
	}
	if len(repo.sessions) != 0 {
		t.Error("認証失敗でセッションが作成された")
	}
}

func TestLogin_EmptyPassword(t *testing.T) {
	svc := newTestService(newFakeSessionRepo())

	if _, err := svc.Login(context.Background(), ""); err == nil {
		t.Fatal("空パスワードでエラーが返らなかった")
	}
}

func TestLogin_SessionIDsAreUnique(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	s1, err := svc.Login(ctx, "correct-password")
	if err != nil {
		t.Fatalf("1回目のLoginに失敗: %v", err)
	}
	s2, err := svc.Login(ctx, "correct-password")
	if err != nil {
		t.Fatalf("2回目のLoginに失敗: %v", err)
	}
	if s1.ID == s2.ID {
		t.Error("セッションIDが重複している")
	}
}

func TestLogin_CreateSessionFails(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.createErr = errors.New("db down")
	svc := newTestService(repo)

	if _, err := svc.Login(context.Background(), "correct-password"); err == nil {
		t.Fatal("セッション作成失敗でエラーが返らなかった")
	}
}

func TestLogout(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	session, err := svc.Login(ctx, "correct-password")
	if err != nil {
		t.Fatalf("Loginに失敗: %v", err)
	}

	if err := svc.Logout(ctx, session.ID); err != nil {
		t.Fatalf("Logoutがエラーを返した: %v", err)
	}

	found, err := svc.FindSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("FindSessionがエラーを返した: %v", err)
	}
	if found != nil {
		t.Error("ログアウト後にセッションが残っている")
	}
}

func TestLogout_EmptySessionID(t *testing.T) {
	svc := newTestService(newFakeSessionRepo())

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatal("空のセッションIDでエラーが返らなかった")
	}
}

func TestFindSession_NotFound(t *testing.T) {
	svc := newTestService(newFakeSessionRepo())

	found, err := svc.FindSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FindSessionがエラーを返した: %v", err)
	}
	if found != nil {
		t.Error("存在しないセッションが返された")
	}
}

func TestFindSession_EmptyID(t *testing.T) {
	svc := newTestService(newFakeSessionRepo())

	found, err := svc.FindSession(context.Background(), "")
	if err != nil {
		t.Fatalf("FindSessionがエラーを返した: %v", err)
	}
	if found != nil {
		t.Error("空IDでセッションが返された")
	}
}
