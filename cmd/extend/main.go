// extend は1枚の画像を指定した縦横比に拡張し、結果をファイルに保存するコマンドです。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/shouni/gemini-wallpaper-studio/pkg/config"
	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
	"github.com/shouni/gemini-wallpaper-studio/pkg/encoder"
	"github.com/shouni/gemini-wallpaper-studio/pkg/generator"
	"github.com/shouni/gemini-wallpaper-studio/pkg/imgutil"
	"github.com/shouni/gemini-wallpaper-studio/pkg/session"
	"github.com/shouni/gemini-wallpaper-studio/pkg/utils"
)

type options struct {
	in     string
	ratio  string
	prompt string
	out    string
	format string
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "input image path (required)")
	flag.StringVar(&opts.ratio, "ratio", string(domain.DefaultAspectRatio), "target aspect ratio (1:1, 3:4, 4:3, 9:16, 16:9)")
	flag.StringVar(&opts.prompt, "prompt", "", "edit instruction (optional)")
	flag.StringVar(&opts.out, "out", "", "output file or directory (default: current directory)")
	flag.StringVar(&opts.format, "format", "", "output format: empty keeps the model's format, or webp")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.in == "" {
		flag.Usage()
		return errors.New("-in is required")
	}
	if opts.format != "" && opts.format != "webp" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	ratio, err := domain.ParseAspectRatio(opts.ratio)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, err := encoder.New(encoder.WithJPEGQuality(cfg.UploadJPEGQuality)).EncodeFile(opts.in)
	if err != nil {
		return err
	}

	client, err := generator.NewGeminiClient(ctx, cfg.Generator())
	if err != nil {
		return err
	}
	sess, err := session.New("cli", client)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.SetImage(img); err != nil {
		return err
	}
	if err := sess.SetPrompt(opts.prompt); err != nil {
		return err
	}
	if err := sess.SetAspectRatio(ratio); err != nil {
		return err
	}

	snap, err := sess.Generate(ctx)
	if err != nil {
		return err
	}
	if snap.State != domain.StateSuccess {
		return errors.New(snap.Error)
	}

	mediaType, data, ok := sess.ResultImage()
	if !ok {
		return errors.New(session.NoImageMessage)
	}
	if opts.format == "webp" {
		if data, err = imgutil.ConvertToWebP(data, cfg.DownloadWebPQuality); err != nil {
			return err
		}
		mediaType = "image/webp"
	}

	path := outputPath(opts.out, utils.DownloadFileName(cfg.ProductName, time.Now(), utils.ExtFromMimeType(mediaType)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("結果画像の保存に失敗しました: %w", err)
	}

	slog.Info("結果画像を保存しました", "path", path, "media_type", mediaType, "bytes", len(data))
	if snap.ResultText != "" {
		fmt.Println(snap.ResultText)
	}
	fmt.Println(path)
	return nil
}

// outputPath は -out がディレクトリ (または未指定) の場合に既定のファイル名を補います。
func outputPath(out, defaultName string) string {
	if out == "" {
		return defaultName
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, defaultName)
	}
	return out
}
