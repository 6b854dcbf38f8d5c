package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/utils"
)

const (
	// DefaultPrompt はプロンプト未入力時にオーケストレーターが補う指示文です。
	// クライアント側の既定文より先に適用されます。
	DefaultPrompt = "Extend and enhance this image to fit the new aspect ratio naturally."

	// FallbackErrorMessage はエラーにメッセージがない場合に表示する文言です。
	FallbackErrorMessage = "Failed to generate image. Please try again."

	// NoImageMessage は応答に画像が含まれなかった場合の文言です。
	NoImageMessage = "No image data received from the model."
)

// Generator はセッションが生成に利用するクライアントです。
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// Session は1ユーザー分の生成ライフサイクル状態を保持します。
// 状態の変更はすべてメソッド経由で行い、外部から直接書き換えることはできません。
type Session struct {
	id     string
	client Generator

	mu          sync.Mutex
	image       *domain.UploadedImage
	prompt      string
	ratio       domain.AspectRatio
	state       domain.LoadingState
	result      *domain.GenerationResult
	errorMsg    string
	seq         uint64
	cancel      context.CancelFunc
	subscribers map[int]chan domain.Snapshot
	nextSubID   int
	closed      bool
	createdAt   time.Time
	updatedAt   time.Time
}

// New は idle 状態のセッションを生成します。
func New(id string, client Generator) (*Session, error) {
	if client == nil {
		return nil, fmt.Errorf("client (Generator) is required")
	}
	now := time.Now()
	return &Session{
		id:          id,
		client:      client,
		ratio:       domain.DefaultAspectRatio,
		state:       domain.StateIdle,
		subscribers: make(map[int]chan domain.Snapshot),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ID はセッションIDを返します。
func (s *Session) ID() string { return s.id }

// SetImage はアップロード画像を差し替え、前回の結果とエラーを消去します。
// 生成中であれば、その生成は破棄されます。
func (s *Session) SetImage(img *domain.UploadedImage) error {
	if img.Empty() {
		return domain.ErrEmptyImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()
	s.image = img
	s.result = nil
	s.errorMsg = ""
	s.touchLocked()
	return nil
}

// ClearImage は画像・プロンプト・結果・エラーをまとめてリセットします。
func (s *Session) ClearImage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()
	s.image = nil
	s.prompt = ""
	s.result = nil
	s.errorMsg = ""
	s.touchLocked()
}

// SetPrompt はプロンプトを更新します。生成中は変更できません。
func (s *Session) SetPrompt(prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateGenerating {
		return domain.ErrGenerationInProgress
	}
	s.prompt = prompt
	s.touchLocked()
	return nil
}

// SetAspectRatio は縦横比を更新します。生成中は変更できません。
func (s *Session) SetAspectRatio(r domain.AspectRatio) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAspectRatio, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateGenerating {
		return domain.ErrGenerationInProgress
	}
	s.ratio = r
	s.touchLocked()
	return nil
}

// Start は生成を開始し、完了時のスナップショットを受け取るチャネルを返します。
// 画像がない場合は ErrNoImage、生成中であれば ErrGenerationInProgress を返し、状態は変えません。
func (s *Session) Start(ctx context.Context) (<-chan domain.Snapshot, error) {
	s.mu.Lock()
	if s.image.Empty() {
		s.mu.Unlock()
		return nil, domain.ErrNoImage
	}
	if s.state == domain.StateGenerating {
		s.mu.Unlock()
		return nil, domain.ErrGenerationInProgress
	}

	prompt := strings.TrimSpace(s.prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	req := domain.GenerationRequest{
		ImageBase64: s.image.Base64,
		MediaType:   s.image.MediaType,
		Prompt:      prompt,
		AspectRatio: s.ratio,
	}

	s.seq++
	id := s.seq
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = domain.StateGenerating
	s.errorMsg = ""
	s.result = nil
	s.touchLocked()
	s.mu.Unlock()

	slog.InfoContext(ctx, "画像生成を開始します", "session", s.id, "request_id", id, "aspect_ratio", req.AspectRatio)

	done := make(chan domain.Snapshot, 1)
	go func() {
		defer cancel()
		result, err := s.client.Generate(runCtx, req)
		done <- s.finish(runCtx, id, result, err)
	}()
	return done, nil
}

// Generate は生成を開始し、完了まで待って最終スナップショットを返します。
func (s *Session) Generate(ctx context.Context) (domain.Snapshot, error) {
	done, err := s.Start(ctx)
	if err != nil {
		return s.Snapshot(), err
	}
	return <-done, nil
}

// finish は応答を状態に反映します。request id が現在の値と異なる応答は破棄します。
func (s *Session) finish(ctx context.Context, id uint64, result *domain.GenerationResult, err error) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.seq || s.closed {
		slog.InfoContext(ctx, "古い生成結果を破棄しました", "session", s.id, "request_id", id, "current", s.seq)
		return s.snapshotLocked()
	}
	s.cancel = nil

	switch {
	case err != nil:
		s.state = domain.StateError
		s.errorMsg = errorMessage(err)
		slog.WarnContext(ctx, "画像生成に失敗しました", "session", s.id, "request_id", id, "error", err)
	case !result.HasImage():
		s.state = domain.StateError
		s.errorMsg = NoImageMessage
		attrs := []any{"session", s.id, "request_id", id}
		if result != nil {
			attrs = append(attrs, "finish_reason", result.FinishReason, "text", result.Text)
		}
		slog.WarnContext(ctx, "応答に画像が含まれていませんでした", attrs...)
	default:
		s.state = domain.StateSuccess
		s.result = result
		slog.InfoContext(ctx, "画像生成が完了しました", "session", s.id, "request_id", id, "bytes", len(result.ImageData))
	}
	s.touchLocked()
	return s.snapshotLocked()
}

// Snapshot は現在の状態のコピーを返します。
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ResultImage はダウンロード用に結果画像のメディアタイプとバイナリを返します。
func (s *Session) ResultImage() (string, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.result.HasImage() {
		return "", nil, false
	}
	if len(s.result.ImageData) > 0 {
		return s.result.ImageMediaType, s.result.ImageData, true
	}
	mt, data, err := utils.ParseDataURL(s.result.ImageDataURL)
	if err != nil {
		return "", nil, false
	}
	return mt, data, true
}

// Subscribe は状態が変わるたびにスナップショットを受け取るチャネルを返します。
// 受信が追いつかない場合は最新のものだけが残ります。
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close は進行中の生成をキャンセルし、購読者をすべて閉じます。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

// LastActivity は最後に状態が変わった時刻を返します。
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// CreatedAt はセッションの作成時刻を返します。
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// supersedeLocked は進行中の生成を破棄して idle に戻します。
func (s *Session) supersedeLocked() {
	if s.state != domain.StateGenerating {
		return
	}
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = domain.StateIdle
	slog.Info("進行中の生成を破棄しました", "session", s.id)
}

func (s *Session) touchLocked() {
	s.updatedAt = time.Now()
	s.broadcastLocked()
}

func (s *Session) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// 古いスナップショットを捨てて最新を入れる
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		ID:               s.id,
		State:            s.state,
		Prompt:           s.prompt,
		AspectRatio:      s.ratio,
		AspectRatioLabel: s.ratio.Label(),
		Error:            s.errorMsg,
		CanGenerate:      !s.image.Empty() && s.state != domain.StateGenerating,
		UpdatedAt:        s.updatedAt,
	}
	if !s.image.Empty() {
		snap.HasImage = true
		snap.ImageName = s.image.Name
		snap.MediaType = s.image.MediaType
		snap.PreviewURL = s.image.PreviewURL()
		snap.Width = s.image.Width
		snap.Height = s.image.Height
	}
	if s.result.HasImage() {
		snap.ResultImage = s.result.ImageDataURL
		snap.ResultText = s.result.Text
	}
	return snap
}

// errorMessage はエラーから表示用の文言を取り出します。
func errorMessage(err error) string {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) && cfgErr.Message != "" {
		return cfgErr.Message
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		if msg := upstream.Error(); msg != "" {
			return msg
		}
		return FallbackErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}
