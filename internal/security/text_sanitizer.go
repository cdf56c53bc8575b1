// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は画像から抽出されたレシピテキストをサニタイズし、
// HTMLタグの混入やXSS攻撃からユーザーを保護する。
// 抽出結果は外部リストサービスへそのまま転送されるため、
// プレーンテキスト以外を一切通さない方針を取る。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は抽出テキストのサニタイズ機能のインターフェースを定義する。
// レシピ名、材料、手順などの全ての抽出フィールドに適用される。
type TextSanitizerService interface {
	// SanitizeText は入力から全てのHTMLタグを除去しプレーンテキストを返す。
	// タグ除去後にHTMLエンティティをデコードし、前後の空白を取り除く。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string

	// SanitizeAll は文字列スライスの各要素をSanitizeTextで処理する。
	// サニタイズ後に空になった要素は除外される。
	SanitizeAll(raws []string) []string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのタグと属性を除去し、テキストノードのみを残す。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力から全てのHTMLタグを除去しプレーンテキストを返す。
// StrictPolicyはテキストをHTMLエスケープした状態で返すため、
// 「1/2カップ &amp; 少々」のような表記を元に戻すデコードを挟む。
func (s *textSanitizer) SanitizeText(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// SanitizeAll は文字列スライスの各要素をSanitizeTextで処理する。
func (s *textSanitizer) SanitizeAll(raws []string) []string {
	if raws == nil {
		return nil
	}
	result := make([]string, 0, len(raws))
	for _, raw := range raws {
		cleaned := s.SanitizeText(raw)
		if cleaned == "" {
			continue
		}
		result = append(result, cleaned)
	}
	return result
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
