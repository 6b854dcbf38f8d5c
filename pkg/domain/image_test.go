package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    AspectRatio
		wantErr bool
	}{
		{"正方形", "1:1", AspectRatioSquare, false},
		{"縦長 3:4", "3:4", AspectRatioPortrait4x3, false},
		{"前後の空白は無視する", " 16:9 ", AspectRatioLandscape16x9, false},
		{"選択肢にない比率", "21:9", "", true},
		{"空文字", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAspectRatio(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAspectRatio)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAspectRatio_Label(t *testing.T) {
	assert.Equal(t, "LANDSCAPE_16_9", DefaultAspectRatio.Label())
	assert.Equal(t, "PORTRAIT_16_9", AspectRatioPortrait16x9.Label())
	assert.Len(t, AspectRatios(), 5)
	for _, r := range AspectRatios() {
		assert.True(t, r.Valid(), "%s should be valid", r)
	}
}

func TestNewUploadedImage(t *testing.T) {
	t.Run("バイナリを壊さずに標準Base64へ変換する", func(t *testing.T) {
		data := []byte{0x00, 0xff, 0x10, 0x89, 'P', 'N', 'G', '\n'}
		img := NewUploadedImage("a.png", data, "image/png")

		assert.Equal(t, base64.StdEncoding.EncodeToString(data), img.Base64)
		assert.Equal(t, "image/png", img.MediaType)
		assert.False(t, img.Empty())
		assert.Equal(t, "data:image/png;base64,"+img.Base64, img.PreviewURL())
	})

	t.Run("データが空ならペイロードもメディアタイプも持たない", func(t *testing.T) {
		img := NewUploadedImage("empty.png", nil, "image/png")

		assert.True(t, img.Empty())
		assert.Empty(t, img.Base64)
		assert.Empty(t, img.MediaType)
		assert.Empty(t, img.PreviewURL())
	})

	t.Run("nil でも Empty は true", func(t *testing.T) {
		var img *UploadedImage
		assert.True(t, img.Empty())
	})
}

func TestGenerationResult_HasImage(t *testing.T) {
	var nilResult *GenerationResult
	assert.False(t, nilResult.HasImage())
	assert.False(t, (&GenerationResult{Text: "only text"}).HasImage())
	assert.True(t, (&GenerationResult{ImageDataURL: "data:image/png;base64,AA=="}).HasImage())
}

func TestUpstreamError(t *testing.T) {
	t.Run("元のエラーメッセージをそのまま返す", func(t *testing.T) {
		cause := errors.New("network timeout")
		err := fmt.Errorf("wrapped: %w", &UpstreamError{Err: cause})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, "network timeout", upstream.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("原因がなければ Message を返す", func(t *testing.T) {
		err := &UpstreamError{Message: "no image"}
		assert.Equal(t, "no image", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
