package session

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/encoder"
	"github.com/shouni/gemini-wallpaper-studio/pkg/generator"
)

// transportFunc は generator.ContentGenerator を関数で満たします。
type transportFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f transportFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

func TestPipeline_EncodeGenerateSuccess(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.Set(3, 3, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	upload, err := encoder.New().Encode(bytes.NewReader(buf.Bytes()), "ten.png", "image/png")
	require.NoError(t, err)

	var sentMIME, sentPrompt, sentRatio string
	calls := 0
	transport := transportFunc(func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		parts := contents[0].Parts
		sentMIME = parts[0].InlineData.MIMEType
		sentPrompt = parts[1].Text
		sentRatio = config.ImageConfig.AspectRatio
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("png")}},
				}},
			}},
		}, nil
	})

	client, err := generator.NewGeminiClientWithModel(generator.Config{APIKey: "test-key"}, transport)
	require.NoError(t, err)

	s := newTestSession(t, client)
	require.NoError(t, s.SetImage(upload))

	snap, err := s.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "image/png", sentMIME, "宣言されたメディアタイプがそのまま送られるのだ")
	assert.Equal(t, DefaultPrompt, sentPrompt)
	assert.Equal(t, string(domain.DefaultAspectRatio), sentRatio)

	assert.Equal(t, domain.StateSuccess, snap.State)
	assert.Equal(t, "data:image/png;base64,cG5n", snap.ResultImage)
}

func TestPipeline_EmptyResponseIsError(t *testing.T) {
	transport := transportFunc(func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	})
	client, err := generator.NewGeminiClientWithModel(generator.Config{APIKey: "test-key"}, transport)
	require.NoError(t, err)

	s := newTestSession(t, client)
	require.NoError(t, s.SetImage(testImage("a.png")))

	snap, err := s.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateError, snap.State)
	assert.NotEmpty(t, snap.Error)
}
