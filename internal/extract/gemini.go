// Package extract はレシピ画像からの構造化データ抽出機能を提供する。
// Gemini APIのgenerateContentエンドポイントにJSONスキーマ制約付きで
// 画像を送信し、レシピの構造化データを取得する。
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/recipeman/internal/model"
)

// ExtractedRecipe は画像から抽出されたレシピの構造化データ。
// 時間は秒単位。省略可能なフィールドはゼロ値のまま返る。
type ExtractedRecipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Notes        string   `json:"notes"`
	CookTime     int      `json:"cookTime"`
	PrepTime     int      `json:"prepTime"`
	Servings     string   `json:"servings"`
}

// ExtractorService はレシピ抽出機能のインターフェースを定義する。
type ExtractorService interface {
	// ExtractRecipe は画像データからレシピを抽出する。
	// imageDataは生の画像バイト列、mimeTypeはその形式を指定する。
	ExtractRecipe(ctx context.Context, imageData []byte, mimeType string) (*ExtractedRecipe, error)
}

// GeminiClient はGemini APIのクライアント。
// ベースURLはテスト用に差し替え可能。
type GeminiClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	model      string
}

// NewGeminiClient はGeminiClientの新しいインスタンスを生成する。
func NewGeminiClient(baseURL, apiKey, modelName string, httpClient *http.Client, logger *slog.Logger) *GeminiClient {
	return &GeminiClient{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      modelName,
	}
}

// extractPrompt は抽出時の指示文。出力の揺れを抑えるため、
// 表記ルールをスキーマとは別に明示する。
const extractPrompt = `Analyze this recipe image and extract the recipe information.
Rules:
- Use Title Case for the recipe name.
- Write fractions with "/" (e.g. 1/2 cup).
- Keep each ingredient as a single line including quantity and unit.
- Number the instructions sequentially, one step per element.
- Put substitutions and serving suggestions into notes, not instructions.
- cookTime and prepTime are in seconds. Omit them if not stated.
- Respond only with the JSON object.`

// recipeSchema はGeminiに強制するレスポンスのJSONスキーマ。
// name、ingredients、instructionsは必須。その他は省略可能。
var recipeSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"name":         map[string]any{"type": "STRING"},
		"ingredients":  map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
		"instructions": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
		"notes":        map[string]any{"type": "STRING"},
		"cookTime":     map[string]any{"type": "INTEGER"},
		"prepTime":     map[string]any{"type": "INTEGER"},
		"servings":     map[string]any{"type": "STRING"},
	},
	"required": []string{"name", "ingredients", "instructions"},
}

// generateContentリクエストのワイヤー表現
type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"response_mime_type"`
	ResponseSchema   map[string]any `json:"response_schema"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ExtractRecipe は画像データからレシピを抽出する。
// スキーマ制約によりレスポンスは常にJSONとして返るが、
// 必須フィールドの欠落は抽出失敗として扱う。
func (c *GeminiClient) ExtractRecipe(ctx context.Context, imageData []byte, mimeType string) (*ExtractedRecipe, error) {
	reqBody := generateContentRequest{
		Contents: []content{
			{
				Parts: []part{
					{InlineData: &inlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(imageData),
					}},
					{Text: extractPrompt},
				},
			},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   recipeSchema,
		},
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, model.NewExtractFailedError(fmt.Sprintf("リクエストのエンコードに失敗しました: %v", err))
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, model.NewExtractFailedError(fmt.Sprintf("リクエストの作成に失敗しました: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Gemini APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewExtractFailedError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewExtractFailedError(fmt.Sprintf("レスポンスの読み取りに失敗しました: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Gemini APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewExtractFailedError(fmt.Sprintf("Gemini APIがステータス %d を返しました", resp.StatusCode))
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, model.NewExtractFailedError(fmt.Sprintf("レスポンスのパースに失敗しました: %v", err))
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, model.NewExtractFailedError("候補が返されませんでした")
	}

	var recipe ExtractedRecipe
	text := genResp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &recipe); err != nil {
		c.logger.Error("抽出結果のパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewExtractFailedError(fmt.Sprintf("抽出結果のパースに失敗しました: %v", err))
	}

	if recipe.Name == "" {
		return nil, model.NewExtractFailedError("レシピ名を抽出できませんでした")
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Instructions == nil {
		recipe.Instructions = []string{}
	}

	c.logger.Info("レシピを抽出しました",
		slog.String("name", recipe.Name),
		slog.Int("ingredient_count", len(recipe.Ingredients)),
		slog.Int("instruction_count", len(recipe.Instructions)),
	)
	return &recipe, nil
}

// compile-time interface check
var _ ExtractorService = (*GeminiClient)(nil)
