package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/imgutil"
	"github.com/shouni/gemini-wallpaper-studio/pkg/utils"
)

type aspectRatioOption struct {
	Value domain.AspectRatio `json:"value"`
	Label string             `json:"label"`
}

type aspectRatiosResponse struct {
	Default domain.AspectRatio  `json:"default"`
	Options []aspectRatioOption `json:"options"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type aspectRatioRequest struct {
	AspectRatio string `json:"aspectRatio"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func (s *Server) handleAspectRatios(w http.ResponseWriter, r *http.Request) {
	resp := aspectRatiosResponse{Default: domain.DefaultAspectRatio}
	for _, ar := range domain.AspectRatios() {
		resp.Options = append(resp.Options, aspectRatioOption{Value: ar, Label: ar.Label()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Stats())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Create()
	if err != nil {
		slog.ErrorContext(r.Context(), "セッションの作成に失敗しました", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.manager.Remove(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("multipart/form-data の解析に失敗しました: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	_, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "form field \"file\" is required")
		return
	}

	img, err := s.encoder.EncodeMultipart(fh)
	if err != nil {
		slog.WarnContext(r.Context(), "アップロード画像を受け付けられませんでした", "session", sess.ID(), "name", fh.Filename, "error", err)
		if statusFor(err) == http.StatusInternalServerError {
			// 読み込み失敗は利用者側の問題として扱う
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	if err := sess.SetImage(img); err != nil {
		writeDomainError(w, err)
		return
	}
	slog.InfoContext(r.Context(), "画像をアップロードしました",
		"session", sess.ID(), "name", img.Name, "media_type", img.MediaType, "bytes", len(img.Data))
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleClearImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ClearImage()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSetPrompt(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := sess.SetPrompt(req.Prompt); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSetAspectRatio(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req aspectRatioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ar, err := domain.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := sess.SetAspectRatio(ar); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleGenerate は生成を開始します。wait=true の場合は完了まで待って最終状態を返します。
// 生成の失敗は HTTP エラーではなくスナップショットの error に現れます。
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if wait {
		snap, err := sess.Generate(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
		return
	}

	// リクエスト終了後も生成を続けるため、キャンセルを引き継がない
	if _, err := sess.Start(context.WithoutCancel(r.Context())); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sess.Snapshot())
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	mediaType, data, ok := sess.ResultImage()
	if !ok {
		writeError(w, http.StatusNotFound, "no generated image yet")
		return
	}

	if format := r.URL.Query().Get("format"); format != "" {
		switch format {
		case "webp":
			converted, err := imgutil.ConvertToWebP(data, s.opts.WebPQuality)
			if err != nil {
				slog.ErrorContext(r.Context(), "WebP変換に失敗しました", "session", sess.ID(), "error", err)
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			mediaType, data = "image/webp", converted
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
			return
		}
	}

	name := utils.DownloadFileName(s.opts.ProductName, s.now(), utils.ExtFromMimeType(mediaType))
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil && !errors.Is(err, context.Canceled) {
		slog.WarnContext(r.Context(), "ダウンロードの送信に失敗しました", "session", sess.ID(), "error", err)
	}
}
