package generator

import (
	"context"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"google.golang.org/genai"
)

// ContentGenerator は genai の Models が満たす通信部分のインターフェースです。
// テストではモックに差し替えます。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageEditor はリクエストオーケストレーターが利用する生成窓口です。
type ImageEditor interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

var _ ImageEditor = (*GeminiClient)(nil)
