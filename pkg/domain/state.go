package domain

import "time"

// LoadingState はセッションごとに1つだけ存在する生成ライフサイクルの状態です。
type LoadingState string

const (
	StateIdle       LoadingState = "idle"
	StateUploading  LoadingState = "uploading" // 宣言のみ。現在どの遷移からも入らない
	StateGenerating LoadingState = "generating"
	StateSuccess    LoadingState = "success"
	StateError      LoadingState = "error"
)

// Snapshot は表示層に渡すセッションの読み取り専用ビューです。
type Snapshot struct {
	ID               string       `json:"id,omitempty"`
	State            LoadingState `json:"state"`
	HasImage         bool         `json:"hasImage"`
	ImageName        string       `json:"imageName,omitempty"`
	MediaType        string       `json:"mediaType,omitempty"`
	PreviewURL       string       `json:"previewUrl,omitempty"`
	Width            int          `json:"width,omitempty"`
	Height           int          `json:"height,omitempty"`
	Prompt           string       `json:"prompt"`
	AspectRatio      AspectRatio  `json:"aspectRatio"`
	AspectRatioLabel string       `json:"aspectRatioLabel"`
	ResultImage      string       `json:"resultImage,omitempty"`
	ResultText       string       `json:"resultText,omitempty"`
	Error            string       `json:"error,omitempty"`
	CanGenerate      bool         `json:"canGenerate"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}
