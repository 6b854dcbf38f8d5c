package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/utils"
)

// --- Mocks ---

type mockGenerator struct {
	mu           sync.Mutex
	calls        int
	generateFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	m.mu.Lock()
	m.calls++
	fn := m.generateFunc
	m.mu.Unlock()
	return fn(ctx, req)
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: 120, B: uint8(y * 10), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// succeedWith は常に同じ画像を返す生成関数です。
func succeedWith(data []byte) func(context.Context, domain.GenerationRequest) (*domain.GenerationResult, error) {
	return func(context.Context, domain.GenerationRequest) (*domain.GenerationResult, error) {
		return &domain.GenerationResult{
			ImageDataURL:   utils.BuildDataURL("image/png", data),
			ImageData:      data,
			ImageMediaType: "image/png",
			Text:           "here you go",
		}, nil
	}
}
