// Package server は Request Orchestrator を HTTP/JSON と WebSocket で公開します。
// 状態遷移はすべて session.Session のメソッドを経由します。
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/shouni/gemini-wallpaper-studio/pkg/encoder"
	"github.com/shouni/gemini-wallpaper-studio/pkg/session"
)

const (
	serviceName = "gemini-wallpaper-studio"

	// multipart のメモリ上限。超えた分は一時ファイルに退避される
	multipartMemory = 32 << 20
)

// Options は Server の動作設定です。
type Options struct {
	ProductName       string
	CORSAllowedOrigin string
	WebPQuality       int
}

// Server は HTTP ハンドラー群を保持します。
type Server struct {
	manager  *session.Manager
	encoder  *encoder.Encoder
	opts     Options
	upgrader websocket.Upgrader
	now      func() time.Time
}

// New は Server を生成します。
func New(manager *session.Manager, enc *encoder.Encoder, opts Options) (*Server, error) {
	if manager == nil {
		return nil, fmt.Errorf("manager (session.Manager) is required")
	}
	if enc == nil {
		return nil, fmt.Errorf("encoder (encoder.Encoder) is required")
	}
	if opts.ProductName == "" {
		opts.ProductName = "nano-banana"
	}
	if opts.CORSAllowedOrigin == "" {
		opts.CORSAllowedOrigin = "*"
	}
	if opts.WebPQuality == 0 {
		opts.WebPQuality = 90
	}

	s := &Server{
		manager: manager,
		encoder: enc,
		opts:    opts,
		now:     time.Now,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}
	return s, nil
}

// Handler はルーティング済みのハンドラーを返します。
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	// プリフライトはルートに一致しないため、ルーターの外側で処理する
	return s.cors(r)
}

// RegisterRoutes はすべてのルートを登録します。
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/aspect-ratios", s.handleAspectRatios).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)

	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	sess := api.PathPrefix("/sessions/{id}").Subrouter()
	sess.HandleFunc("/image", s.handleUploadImage).Methods(http.MethodPut)
	sess.HandleFunc("/image", s.handleClearImage).Methods(http.MethodDelete)
	sess.HandleFunc("/prompt", s.handleSetPrompt).Methods(http.MethodPut)
	sess.HandleFunc("/aspect-ratio", s.handleSetAspectRatio).Methods(http.MethodPut)
	sess.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	sess.HandleFunc("/result", s.handleResult).Methods(http.MethodGet)
	sess.HandleFunc("/ws", s.handleWebSocket)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.opts.CORSAllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.opts.CORSAllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.opts.CORSAllowedOrigin
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]
	sess, ok := s.manager.Get(id)
	if !ok {
		slog.DebugContext(r.Context(), "セッションが見つかりません", "session", id)
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}
