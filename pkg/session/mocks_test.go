package session

import (
	"context"
	"sync"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/utils"
)

// --- Mocks ---

type mockGenerator struct {
	mu           sync.Mutex
	requests     []domain.GenerationRequest
	generateFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.generateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return imageResult("image/png", []byte("result")), nil
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockGenerator) lastRequest() domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

// blockingGenerator は release が閉じられるか ctx が終わるまで応答を返しません。
type blockingGenerator struct {
	mockGenerator
	started chan struct{}
	release chan struct{}
}

func newBlockingGenerator() *blockingGenerator {
	b := &blockingGenerator{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	b.generateFunc = func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
		b.started <- struct{}{}
		<-b.release
		return imageResult("image/png", []byte("late")), nil
	}
	return b
}

func imageResult(mediaType string, data []byte) *domain.GenerationResult {
	return &domain.GenerationResult{
		ImageDataURL:   utils.BuildDataURL(mediaType, data),
		ImageData:      data,
		ImageMediaType: mediaType,
	}
}

func testImage(name string) *domain.UploadedImage {
	return domain.NewUploadedImage(name, []byte("png-bytes-"+name), "image/png")
}
