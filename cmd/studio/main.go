package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shouni/gemini-wallpaper-studio/pkg/config"
	"github.com/shouni/gemini-wallpaper-studio/pkg/encoder"
	"github.com/shouni/gemini-wallpaper-studio/pkg/generator"
	"github.com/shouni/gemini-wallpaper-studio/pkg/server"
	"github.com/shouni/gemini-wallpaper-studio/pkg/session"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("サーバーを終了します", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.HasAPIKey() {
		slog.WarnContext(ctx, "GEMINI_API_KEY が未設定です。生成リクエストはエラーになります")
	}

	client, err := generator.NewGeminiClient(ctx, cfg.Generator())
	if err != nil {
		return err
	}
	manager, err := session.NewManager(client)
	if err != nil {
		return err
	}
	defer manager.CloseAll()
	manager.StartCleanup(ctx, cfg.SessionCleanupInterval, cfg.SessionTTL)

	srv, err := server.New(manager, encoder.New(encoder.WithJPEGQuality(cfg.UploadJPEGQuality)), server.Options{
		ProductName:       cfg.ProductName,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		WebPQuality:       cfg.DownloadWebPQuality,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "サーバーを起動しました",
			"addr", httpServer.Addr,
			"model", client.Model(),
			"product", cfg.ProductName)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("シャットダウンを開始します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("サーバーを停止しました")
	return nil
}
