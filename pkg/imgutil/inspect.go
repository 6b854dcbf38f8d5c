package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gen2brain/webp"
)

// Info は画像全体をデコードせずに得られるメタデータです。
type Info struct {
	Format string
	Width  int
	Height int
}

// Inspect はヘッダーだけを読んで形式とサイズを返します。
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// webp の登録に頼らず、直接ヘッダーを読んでみる
		wcfg, werr := webp.DecodeConfig(bytes.NewReader(data))
		if werr != nil {
			return Info{}, fmt.Errorf("画像ヘッダーの読み取りに失敗しました: %w", err)
		}
		return Info{Format: "webp", Width: wcfg.Width, Height: wcfg.Height}, nil
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
