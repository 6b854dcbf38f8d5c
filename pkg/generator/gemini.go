package generator

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// NewGeminiClient は genai クライアントを組み立てて GeminiClient を返します。
// API キーが空でもエラーにはせず、生成のたびに ConfigurationError を返すクライアントになります。
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		slog.WarnContext(ctx, "APIキーが未設定です。画像生成はすべて失敗します")
		return &GeminiClient{cfg: cfg}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの初期化に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "Geminiクライアントを初期化しました", "model", cfg.model())
	return &GeminiClient{cfg: cfg, models: client.Models}, nil
}

// NewGeminiClientWithModel は通信部分を注入して GeminiClient を生成します。
func NewGeminiClientWithModel(cfg Config, models ContentGenerator) (*GeminiClient, error) {
	if models == nil && cfg.APIKey != "" {
		return nil, fmt.Errorf("models (ContentGenerator) is required")
	}
	return &GeminiClient{cfg: cfg, models: models}, nil
}
