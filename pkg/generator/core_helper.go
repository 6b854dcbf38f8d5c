package generator

import (
	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/utils"
	"google.golang.org/genai"
)

// buildContents は画像、プロンプトの順でパーツを並べます。
func buildContents(imgBytes []byte, mediaType, prompt string) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromBytes(imgBytes, mediaType),
		genai.NewPartFromText(prompt),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// 画像モデルでは ResponseMIMEType を指定しない
func buildConfig(ratio domain.AspectRatio) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: string(ratio),
		},
	}
}

// parseResponse は最初の候補のパーツをすべて走査します。
// 画像パーツ・テキストパーツはそれぞれ最後に現れたものを採用します。
func parseResponse(resp *genai.GenerateContentResponse) *domain.GenerationResult {
	result := &domain.GenerationResult{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return result
	}

	candidate := resp.Candidates[0]
	result.FinishReason = string(candidate.FinishReason)
	if candidate.Content == nil {
		return result
	}

	for _, part := range candidate.Content.Parts {
		switch {
		case part == nil:
			continue
		case part.InlineData != nil && len(part.InlineData.Data) > 0:
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = defaultResultMIMEType
			}
			result.ImageData = part.InlineData.Data
			result.ImageMediaType = mimeType
			result.ImageDataURL = utils.BuildDataURL(mimeType, part.InlineData.Data)
		case part.Text != "":
			result.Text = part.Text
		}
	}
	return result
}
