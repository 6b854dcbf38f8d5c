package imgutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	t.Run("PNGの形式とサイズを読み取れる", func(t *testing.T) {
		info, err := Inspect(createDummyImageData(t, "png", 10, 6))
		require.NoError(t, err)
		assert.Equal(t, Info{Format: "png", Width: 10, Height: 6}, info)
	})

	t.Run("JPEGの形式とサイズを読み取れる", func(t *testing.T) {
		info, err := Inspect(createDummyImageData(t, "jpeg", 8, 12))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", info.Format)
		assert.Equal(t, 8, info.Width)
		assert.Equal(t, 12, info.Height)
	})

	t.Run("画像でなければエラー", func(t *testing.T) {
		_, err := Inspect([]byte("plain text"))
		assert.Error(t, err)
	})
}

func TestConvertToWebP(t *testing.T) {
	t.Run("PNGをWebPに変換できる", func(t *testing.T) {
		out, err := ConvertToWebP(createDummyImageData(t, "png", 16, 16), 80)
		require.NoError(t, err)
		require.Greater(t, len(out), 12)
		assert.Equal(t, "RIFF", string(out[:4]))
		assert.Equal(t, "WEBP", string(out[8:12]))

		info, err := Inspect(out)
		require.NoError(t, err)
		assert.Equal(t, "webp", info.Format)
		assert.Equal(t, 16, info.Width)
	})

	t.Run("不正なデータはエラー", func(t *testing.T) {
		_, err := ConvertToWebP([]byte("nope"), 80)
		assert.Error(t, err)
	})
}
