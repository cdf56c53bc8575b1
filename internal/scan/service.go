// Package scan はレシピ画像の受け付けと抽出の調整機能を提供する。
// アップロード画像とURL指定画像の検証、AI抽出の呼び出し、
// 抽出結果のサニタイズを行う。
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/recipeman/internal/extract"
	"github.com/hitoshi/recipeman/internal/metrics"
	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/security"
)

// allowedMIMETypes は受け付ける画像形式。
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Service はレシピ画像のスキャン処理を調整する。
type Service struct {
	extractor extract.ExtractorService
	sanitizer security.TextSanitizerService
	ssrfGuard security.SSRFGuardService
	collector metrics.MetricsCollector
	logger    *slog.Logger

	uploadMaxSize int64
	fetchTimeout  time.Duration
	fetchMaxSize  int64
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	extractor extract.ExtractorService,
	sanitizer security.TextSanitizerService,
	ssrfGuard security.SSRFGuardService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	uploadMaxSize int64,
	fetchTimeout time.Duration,
	fetchMaxSize int64,
) *Service {
	return &Service{
		extractor:     extractor,
		sanitizer:     sanitizer,
		ssrfGuard:     ssrfGuard,
		collector:     collector,
		logger:        logger,
		uploadMaxSize: uploadMaxSize,
		fetchTimeout:  fetchTimeout,
		fetchMaxSize:  fetchMaxSize,
	}
}

// ScanUpload はアップロードされた画像からレシピを抽出する。
// サイズ上限と画像形式を検証してから抽出を行う。
// 形式判定は申告されたContent-Typeではなく先頭バイトのスニッフィングで行う。
func (s *Service) ScanUpload(ctx context.Context, imageData []byte) (*extract.ExtractedRecipe, error) {
	if int64(len(imageData)) > s.uploadMaxSize {
		return nil, model.NewImageTooLargeError(s.uploadMaxSize)
	}
	if len(imageData) == 0 {
		return nil, model.NewUnsupportedImageTypeError("empty")
	}

	mimeType := http.DetectContentType(imageData)
	if !allowedMIMETypes[mimeType] {
		return nil, model.NewUnsupportedImageTypeError(mimeType)
	}

	return s.extractAndSanitize(ctx, imageData, mimeType)
}

// ScanImageURL はURLで指定された画像を取得しレシピを抽出する。
// SSRF防止のため、URLの事前検証とDialerレベルのIP検証の両方を通す。
func (s *Service) ScanImageURL(ctx context.Context, rawURL string) (*extract.ExtractedRecipe, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, model.NewInvalidURLError(rawURL)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, model.NewInvalidURLError(fmt.Sprintf("スキーム %s は使用できません", parsed.Scheme))
	}

	if err := s.ssrfGuard.ValidateURL(rawURL); err != nil {
		s.logger.Warn("画像URLがセキュリティポリシーによりブロックされました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSSRFBlockedError()
	}

	imageData, err := s.fetchImage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	mimeType := http.DetectContentType(imageData)
	if !allowedMIMETypes[mimeType] {
		return nil, model.NewUnsupportedImageTypeError(mimeType)
	}

	return s.extractAndSanitize(ctx, imageData, mimeType)
}

// fetchImage はSSRF防止付きクライアントで画像を取得する。
// レスポンスはサイズ上限まで読み取り、超過した場合はエラーを返す。
func (s *Service) fetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	client := s.ssrfGuard.NewSafeClient(s.fetchTimeout, s.fetchMaxSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, model.NewFetchFailedError(err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		s.logger.Warn("画像URLの取得に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewFetchFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewFetchFailedError(fmt.Sprintf("ステータス %d が返されました", resp.StatusCode))
	}

	// 上限+1バイトまで読み、超過を検出する
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.fetchMaxSize+1))
	if err != nil {
		return nil, model.NewFetchFailedError(err.Error())
	}
	if int64(len(data)) > s.fetchMaxSize {
		return nil, model.NewImageTooLargeError(s.fetchMaxSize)
	}
	if len(data) == 0 {
		return nil, model.NewFetchFailedError("空のレスポンスが返されました")
	}

	return data, nil
}

// extractAndSanitize は抽出を実行し、全ての抽出フィールドをサニタイズする。
// サニタイズ後にレシピ名が空になった場合は抽出失敗として扱う。
func (s *Service) extractAndSanitize(ctx context.Context, imageData []byte, mimeType string) (*extract.ExtractedRecipe, error) {
	recipe, err := s.extractor.ExtractRecipe(ctx, imageData, mimeType)
	if err != nil {
		s.collector.RecordExtractFailure(extractFailureReason(err))
		return nil, err
	}

	recipe.Name = s.sanitizer.SanitizeText(recipe.Name)
	recipe.Notes = s.sanitizer.SanitizeText(recipe.Notes)
	recipe.Servings = s.sanitizer.SanitizeText(recipe.Servings)
	recipe.Ingredients = s.sanitizer.SanitizeAll(recipe.Ingredients)
	recipe.Instructions = s.sanitizer.SanitizeAll(recipe.Instructions)
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Instructions == nil {
		recipe.Instructions = []string{}
	}

	if recipe.Name == "" {
		s.collector.RecordExtractFailure("empty_name")
		return nil, model.NewExtractFailedError("レシピ名を抽出できませんでした")
	}

	s.collector.RecordExtractSuccess()
	return recipe, nil
}

// extractFailureReason はメトリクスラベル用の失敗理由を返す。
func extractFailureReason(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return strings.ToLower(apiErr.Code)
	}
	return "unknown"
}
