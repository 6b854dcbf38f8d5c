package generator

import (
	"context"

	"google.golang.org/genai"
)

// --- Mocks ---

// generateCall は mockModels が受け取った引数の記録です。
type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type mockModels struct {
	calls        []generateCall
	generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls = append(m.calls, generateCall{model: model, contents: contents, config: config})
	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, contents, config)
	}
	return responseWithParts(&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("fake")}}), nil
}

func responseWithParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: parts},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}
