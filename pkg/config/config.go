// Package config は環境変数と .env から実行時設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shouni/gemini-wallpaper-studio/pkg/generator"
)

const (
	defaultPort                = "8080"
	defaultProductName         = "nano-banana"
	defaultCORSOrigin          = "*"
	defaultSessionTTL          = 2 * time.Hour
	defaultCleanupInterval     = 5 * time.Minute
	defaultDownloadWebPQuality = 90
)

// Config はサーバーとCLIが共有する設定です。
type Config struct {
	// Gemini API
	GeminiAPIKey string
	GeminiModel  string

	// Server
	Port              string
	LogLevel          slog.Level
	ProductName       string
	CORSAllowedOrigin string

	// Session
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	// Image
	UploadJPEGQuality   int
	DownloadWebPQuality int
}

// Load は .env を読み込んだうえで環境変数から Config を組み立てます。
// .env がなくてもエラーにはしません。値の形式が不正な場合はエラーを返します。
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug(".env ファイルが見つからないため環境変数のみを使います", "error", err)
	}
	return FromEnv()
}

// FromEnv は現在の環境変数だけから Config を組み立てます。
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		GeminiAPIKey:      apiKey(),
		GeminiModel:       getEnv("GEMINI_MODEL", generator.DefaultModel),
		Port:              getEnv("PORT", defaultPort),
		ProductName:       getEnv("PRODUCT_NAME", defaultProductName),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", defaultCORSOrigin),
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	errs = append(errs, err)
	cfg.LogLevel = level

	cfg.SessionTTL, err = getDuration("SESSION_TTL", defaultSessionTTL)
	errs = append(errs, err)
	cfg.SessionCleanupInterval, err = getDuration("SESSION_CLEANUP_INTERVAL", defaultCleanupInterval)
	errs = append(errs, err)

	cfg.UploadJPEGQuality, err = getQuality("UPLOAD_JPEG_QUALITY", 0, true)
	errs = append(errs, err)
	cfg.DownloadWebPQuality, err = getQuality("DOWNLOAD_WEBP_QUALITY", defaultDownloadWebPQuality, false)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	return cfg, nil
}

// HasAPIKey は API キーが設定されているかどうかを返します。
func (c *Config) HasAPIKey() bool {
	return c.GeminiAPIKey != ""
}

// Generator は生成クライアント用の設定を返します。
func (c *Config) Generator() generator.Config {
	return generator.Config{APIKey: c.GeminiAPIKey, Model: c.GeminiModel}
}

// Addr は待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}

func apiKey() string {
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("API_KEY"))
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s の値 %q を期間として解釈できません: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s は0以上である必要があります (got %s)", key, d)
	}
	return d, nil
}

// getQuality は 1..100 の品質値を読みます。allowZero の場合は 0 (無効) も受け付けます。
func getQuality(key string, defaultValue int, allowZero bool) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	q, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s の値 %q を整数として解釈できません: %w", key, v, err)
	}
	if q == 0 && allowZero {
		return 0, nil
	}
	if q < 1 || q > 100 {
		return 0, fmt.Errorf("%s は1から100の範囲で指定してください (got %d)", key, q)
	}
	return q, nil
}

func parseLevel(v string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL の値 %q が不正です: %w", v, err)
	}
	return level, nil
}
