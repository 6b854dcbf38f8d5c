package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト用のダミー画像（w x h のグラデーション）を作成するヘルパー
func createDummyImageData(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 13), uint8((x ^ y) * 5), 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err, "failed to encode dummy image")
	return buf.Bytes()
}

func TestCompressToJPEG(t *testing.T) {
	t.Run("正常なPNG画像をJPEGに圧縮できること", func(t *testing.T) {
		pngData := createDummyImageData(t, "png", 10, 10)

		got, err := CompressToJPEG(pngData, 75)
		require.NoError(t, err)
		require.NotEmpty(t, got)

		_, format, err := image.Decode(bytes.NewReader(got))
		require.NoError(t, err, "failed to decode output image")
		assert.Equal(t, "jpeg", format)
	})

	t.Run("不正なデータを与えた場合にエラーを返すこと", func(t *testing.T) {
		_, err := CompressToJPEG([]byte("this is not an image"), 75)
		assert.Error(t, err)
	})

	t.Run("範囲外の品質はエラーになること", func(t *testing.T) {
		pngData := createDummyImageData(t, "png", 4, 4)

		_, err := CompressToJPEG(pngData, 0)
		assert.Error(t, err)
		_, err = CompressToJPEG(pngData, 101)
		assert.Error(t, err)
	})

	t.Run("Quality設定によってサイズが変化すること", func(t *testing.T) {
		input := createDummyImageData(t, "png", 64, 64)

		highQuality, err := CompressToJPEG(input, 100)
		require.NoError(t, err)
		lowQuality, err := CompressToJPEG(input, 10)
		require.NoError(t, err)

		assert.Less(t, len(lowQuality), len(highQuality))
	})
}
