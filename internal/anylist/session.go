package anylist

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Session はAnyListアカウントへの認証付きセッションを管理する。
// 認証は遅延実行かつ冪等で、最初の操作時に1回だけログインする。
// アカウントスナップショットとユーザーID解決結果をセッション存続期間
// キャッシュする。複数ゴルーチンからの利用に対して安全。
//
// シングルトンではなく、依存として注入して使用する。
// テストや複数アカウント運用で独立したインスタンスを並存できる。
type Session struct {
	client   *Client
	email    string
	password string
	logger   *slog.Logger

	mu             sync.Mutex
	authenticated  bool
	snapshot       *UserData
	resolvedUserID string
	userIDResolved bool
}

// NewSession はSessionの新しいインスタンスを生成する。
// この時点ではログインは行わない。
func NewSession(client *Client, email, password string, logger *slog.Logger) *Session {
	return &Session{
		client:   client,
		email:    email,
		password: password,
		logger:   logger,
	}
}

// EnsureAuthenticated は未認証の場合のみログインを実行する。
// 認証済みの場合は何もせずnilを返す（冪等）。
// ログイン失敗時は認証フラグを立てず、次回呼び出しで再試行される。
func (s *Session) EnsureAuthenticated(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureAuthenticatedLocked(ctx)
}

func (s *Session) ensureAuthenticatedLocked(ctx context.Context) error {
	if s.authenticated {
		return nil
	}

	if err := s.client.Login(ctx, s.email, s.password); err != nil {
		return err
	}

	s.authenticated = true
	// 再ログイン後は前セッションのID解決結果を引き継がない
	s.resolvedUserID = ""
	s.userIDResolved = false
	s.logger.Info("AnyListセッションを確立しました")
	return nil
}

// UserData はアカウントスナップショットを返す。
// キャッシュ済みかつforceRefresh=falseの場合はキャッシュを返す。
// forceRefresh=trueの場合は常に再取得してキャッシュを差し替える。
// 取得失敗時はキャッシュを変更しない。
func (s *Session) UserData(ctx context.Context, forceRefresh bool) (*UserData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureAuthenticatedLocked(ctx); err != nil {
		return nil, err
	}

	if s.snapshot != nil && !forceRefresh {
		return s.snapshot, nil
	}

	data, err := s.client.GetUserData(ctx)
	if err != nil {
		return nil, err
	}

	s.snapshot = data
	return data, nil
}

// ResolveUserID は設定されたメールアドレスに対応するAnyListユーザーIDを返す。
// 最初の買い物リストの共有ユーザーをメールアドレスの大文字小文字を
// 無視して走査する。見つからない場合は空文字列を返す（エラーではない）。
// 解決結果は見つからなかった事実も含めてセッション存続期間キャッシュされる。
func (s *Session) ResolveUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureAuthenticatedLocked(ctx); err != nil {
		return "", err
	}

	if s.userIDResolved {
		return s.resolvedUserID, nil
	}

	data := s.snapshot
	if data == nil {
		fetched, err := s.client.GetUserData(ctx)
		if err != nil {
			return "", err
		}
		s.snapshot = fetched
		data = fetched
	}

	userID := ""
	if len(data.ShoppingLists) > 0 {
		for _, user := range data.ShoppingLists[0].SharedUsers {
			if strings.EqualFold(user.Email, s.email) {
				userID = user.UserID
				break
			}
		}
	}

	if userID == "" {
		s.logger.Info("共有ユーザーにメールアドレスが見つかりませんでした",
			slog.String("email", s.email),
		)
	}

	s.resolvedUserID = userID
	s.userIDResolved = true
	return userID, nil
}
