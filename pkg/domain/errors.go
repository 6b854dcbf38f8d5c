package domain

import "errors"

var (
	ErrNoImage              = errors.New("no image uploaded")
	ErrGenerationInProgress = errors.New("generation already in progress")
	ErrInvalidAspectRatio   = errors.New("invalid aspect ratio")
	ErrUnsupportedMediaType = errors.New("unsupported media type: an image file is required")
	ErrEmptyImage           = errors.New("image data is empty")
)

// ConfigurationError は API キー未設定など、生成を始める前に判明する設定不備です。
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// UpstreamError はリモート呼び出しの失敗、または使えない応答を表します。
// 元のエラーがある場合、そのメッセージをそのまま返します。
type UpstreamError struct {
	Message      string
	FinishReason string
	Err          error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }
