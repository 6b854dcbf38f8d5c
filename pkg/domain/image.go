package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// AspectRatio は出力画像の縦横比です。固定の選択肢からのみ選べます。
type AspectRatio string

const (
	AspectRatioSquare        AspectRatio = "1:1"
	AspectRatioPortrait4x3   AspectRatio = "3:4"
	AspectRatioLandscape4x3  AspectRatio = "4:3"
	AspectRatioPortrait16x9  AspectRatio = "9:16"
	AspectRatioLandscape16x9 AspectRatio = "16:9"

	// DefaultAspectRatio はユーザーが選択する前の初期値です。
	DefaultAspectRatio = AspectRatioLandscape16x9
)

var aspectRatioLabels = map[AspectRatio]string{
	AspectRatioSquare:        "SQUARE",
	AspectRatioPortrait4x3:   "PORTRAIT_4_3",
	AspectRatioLandscape4x3:  "LANDSCAPE_4_3",
	AspectRatioPortrait16x9:  "PORTRAIT_16_9",
	AspectRatioLandscape16x9: "LANDSCAPE_16_9",
}

// AspectRatios は選択可能な縦横比を表示順で返します。
func AspectRatios() []AspectRatio {
	return []AspectRatio{
		AspectRatioSquare,
		AspectRatioPortrait4x3,
		AspectRatioLandscape4x3,
		AspectRatioPortrait16x9,
		AspectRatioLandscape16x9,
	}
}

// ParseAspectRatio は文字列を AspectRatio に変換します。
func ParseAspectRatio(s string) (AspectRatio, error) {
	r := AspectRatio(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
	}
	return r, nil
}

// Valid は固定の選択肢に含まれるかを返します。
func (r AspectRatio) Valid() bool {
	_, ok := aspectRatioLabels[r]
	return ok
}

// Label は画面表示用のキー名 (例: LANDSCAPE_16_9) を返します。
func (r AspectRatio) Label() string {
	return aspectRatioLabels[r]
}

func (r AspectRatio) String() string { return string(r) }

// UploadedImage はユーザーが選択した画像と、そこから導出した値を保持します。
// Base64 と MediaType は常に両方そろっているか、両方空かのどちらかです。
type UploadedImage struct {
	Name      string
	Data      []byte
	Base64    string
	MediaType string
	Width     int
	Height    int
}

// NewUploadedImage は生データから UploadedImage を組み立てます。
func NewUploadedImage(name string, data []byte, mediaType string) *UploadedImage {
	if len(data) == 0 || mediaType == "" {
		return &UploadedImage{Name: name}
	}
	return &UploadedImage{
		Name:      name,
		Data:      data,
		Base64:    base64.StdEncoding.EncodeToString(data),
		MediaType: mediaType,
	}
}

// Empty はペイロードを持たない場合に true を返します。
func (u *UploadedImage) Empty() bool {
	return u == nil || u.Base64 == "" || u.MediaType == ""
}

// PreviewURL はプレビュー表示用のデータURLです。
func (u *UploadedImage) PreviewURL() string {
	if u.Empty() {
		return ""
	}
	return "data:" + u.MediaType + ";base64," + u.Base64
}

// GenerationRequest は1回の生成試行ごとに新しく組み立てられるリクエストです。
type GenerationRequest struct {
	ImageBase64 string
	MediaType   string
	Prompt      string
	AspectRatio AspectRatio
}

// GenerationResult はモデルの応答から取り出した画像とテキストです。
// 画像がない場合 ImageDataURL は空文字になります。
type GenerationResult struct {
	ImageDataURL   string
	ImageData      []byte
	ImageMediaType string
	Text           string
	FinishReason   string
}

// HasImage は結果画像を含むかを返します。
func (r *GenerationResult) HasImage() bool {
	return r != nil && r.ImageDataURL != ""
}
