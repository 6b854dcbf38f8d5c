// Package encoder は、ユーザーが選択した画像ファイルを読み込み、
// Base64 ペイロードとメディアタイプを持つ domain.UploadedImage に変換します。
package encoder

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/imgutil"
)

// Encoder はファイルエンコーダーです。ゼロ値のままでも利用できます。
type Encoder struct {
	jpegQuality int
}

// Option は Encoder の設定を変更します。
type Option func(*Encoder)

// WithJPEGQuality はアップロード画像をJPEGに再圧縮します。0 の場合は再圧縮しません。
func WithJPEGQuality(quality int) Option {
	return func(e *Encoder) {
		e.jpegQuality = quality
	}
}

// New は Encoder を生成します。
func New(opts ...Option) *Encoder {
	e := &Encoder{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode は r の内容をすべて読み込み、UploadedImage を返します。
// declaredType は "image/" で始まる必要があります。空の場合は内容から判定します。
func (e *Encoder) Encode(r io.Reader, name, declaredType string) (*domain.UploadedImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルの読み込みに失敗しました: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyImage
	}

	mediaType, err := resolveMediaType(declaredType, data)
	if err != nil {
		return nil, err
	}

	if e.jpegQuality > 0 {
		compressed, err := imgutil.CompressToJPEG(data, e.jpegQuality)
		if err != nil {
			slog.Warn("JPEG再圧縮に失敗したため元の画像をそのまま使います", "name", name, "error", err)
		} else {
			data = compressed
			mediaType = "image/jpeg"
		}
	}

	img := domain.NewUploadedImage(name, data, mediaType)
	if info, err := imgutil.Inspect(data); err == nil {
		img.Width, img.Height = info.Width, info.Height
	} else {
		slog.Debug("画像サイズを取得できませんでした", "name", name, "media_type", mediaType, "error", err)
	}
	return img, nil
}

// EncodeFile はローカルファイルを読み込みます。メディアタイプは拡張子から決めます。
func (e *Encoder) EncodeFile(path string) (*domain.UploadedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルを開けませんでした: %w", err)
	}
	defer f.Close()

	return e.Encode(f, filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)))
}

// EncodeMultipart は multipart/form-data で受け取ったファイルを読み込みます。
func (e *Encoder) EncodeMultipart(fh *multipart.FileHeader) (*domain.UploadedImage, error) {
	if fh == nil {
		return nil, fmt.Errorf("file header is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("アップロードファイルを開けませんでした: %w", err)
	}
	defer f.Close()

	return e.Encode(f, fh.Filename, fh.Header.Get("Content-Type"))
}

func resolveMediaType(declared string, data []byte) (string, error) {
	mediaType := normalizeMediaType(declared)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = normalizeMediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w (got %q)", domain.ErrUnsupportedMediaType, mediaType)
	}
	return mediaType, nil
}

func normalizeMediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(v)
}
