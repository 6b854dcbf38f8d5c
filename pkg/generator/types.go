package generator

const (
	// DefaultModel は画像編集に使う Gemini のモデル名です。
	DefaultModel = "gemini-2.5-flash-image"

	// DefaultPrompt はプロンプトが空のまま届いた場合に送る指示文です。
	DefaultPrompt = "Enhance this image and adjust to the target aspect ratio."

	// MissingAPIKeyMessage は API キー未設定時のエラーメッセージです。
	MissingAPIKeyMessage = "API Key is missing. Please ensure GEMINI_API_KEY (or API_KEY) is available."

	// サービスがメディアタイプを返さなかった場合に仮定する形式
	defaultResultMIMEType = "image/png"
)

// Config は GeminiClient の設定です。
type Config struct {
	APIKey string
	Model  string
}

func (c Config) model() string {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}
