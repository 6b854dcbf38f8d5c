package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const dataURLBase64Marker = ";base64,"

// BuildDataURL は、バイナリを data:<mediaType>;base64,<payload> 形式に変換します。
func BuildDataURL(mediaType string, data []byte) string {
	return BuildDataURLFromBase64(mediaType, base64.StdEncoding.EncodeToString(data))
}

// BuildDataURLFromBase64 は、エンコード済みのペイロードからデータURLを組み立てます。
func BuildDataURLFromBase64(mediaType, payload string) string {
	return "data:" + mediaType + dataURLBase64Marker + payload
}

// ParseDataURL は、Base64 形式のデータURLからメディアタイプとバイナリを取り出します。
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("data URL ではありません")
	}
	mediaType, payload, ok := strings.Cut(rest, dataURLBase64Marker)
	if !ok {
		return "", nil, fmt.Errorf("base64 形式の data URL ではありません")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL のデコードに失敗しました: %w", err)
	}
	return mediaType, data, nil
}

// ExtFromMimeType は、メディアタイプに対応する拡張子を返します。不明な場合は .png です。
func ExtFromMimeType(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// DownloadFileName は <product>-edit-<unix-millis><ext> 形式のファイル名を返します。
func DownloadFileName(product string, t time.Time, ext string) string {
	if ext == "" {
		ext = ".png"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s-edit-%d%s", product, t.UnixMilli(), ext)
}
