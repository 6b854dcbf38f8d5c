package imgutil

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/webp"
)

// ConvertToWebP は画像データをWebPに変換します。ダウンロード時の軽量化に使います。
func ConvertToWebP(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("WebPエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
