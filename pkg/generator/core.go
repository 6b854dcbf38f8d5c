package generator

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
)

// GeminiClient は画像・プロンプト・縦横比を1回のリモート呼び出しで送り、
// 応答から結果画像と説明テキストを取り出します。リトライやタイムアウトは行いません。
type GeminiClient struct {
	cfg    Config
	models ContentGenerator
}

// Model は使用するモデル名を返します。
func (c *GeminiClient) Model() string {
	return c.cfg.model()
}

// Generate は画像編集リクエストを実行します。
// 応答に画像がなくてもエラーにはせず、ImageDataURL が空の結果を返します。
func (c *GeminiClient) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	// 通信より前に認証情報を確認する
	if c.cfg.APIKey == "" || c.models == nil {
		return nil, &domain.ConfigurationError{Message: MissingAPIKeyMessage}
	}

	if req.ImageBase64 == "" {
		return nil, domain.ErrEmptyImage
	}
	imgBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("画像ペイロードのBase64デコードに失敗しました: %w", err)
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	contents := buildContents(imgBytes, req.MediaType, prompt)
	config := buildConfig(req.AspectRatio)

	slog.InfoContext(ctx, "Geminiに画像編集をリクエストします",
		"model", c.Model(),
		"aspect_ratio", req.AspectRatio,
		"media_type", req.MediaType,
		"image_bytes", len(imgBytes))

	resp, err := c.models.GenerateContent(ctx, c.Model(), contents, config)
	if err != nil {
		slog.ErrorContext(ctx, "Gemini APIの呼び出しに失敗しました", "model", c.Model(), "error", err)
		return nil, &domain.UpstreamError{Err: err}
	}

	result := parseResponse(resp)
	slog.InfoContext(ctx, "Geminiの応答を解析しました",
		"has_image", result.HasImage(),
		"image_bytes", len(result.ImageData),
		"has_text", result.Text != "",
		"finish_reason", result.FinishReason)
	return result, nil
}
