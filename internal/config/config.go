// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// ストレージバックエンド名
const (
	StorageBackendPostgres  = "postgres"
	StorageBackendSurrealDB = "surrealdb"
	StorageBackendMemory    = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数（または任意のconfig.yaml）から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	StorageBackend    string
	DatabaseURL       string
	SurrealDBURL      string
	SurrealDBNS       string
	SurrealDBDatabase string
	SurrealDBUser     string
	SurrealDBPass     string

	// Completion
	CompletionProvider    string
	CompletionAPIKey      string
	CompletionModel       string
	CompletionBaseURL     string
	CompletionTemperature float64
	CompletionMaxTokens   int
	CompletionTimeout     time.Duration

	// Rate Limit（1分あたりのリクエスト数）
	RateLimitGeneral  int
	RateLimitGenerate int

	// Server
	ServerPort  string
	MetricsPort string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string

	// Session
	SessionCleanupInterval time.Duration

	// 開発用セッション（memoryバックエンドのみ）
	DevSessionToken string
	DevUserID       string

	// Collation
	CollationLocale language.Tag
}

// requirement は読み込み時に必須とする設定グループ。
type requirement int

const (
	requireStorage requirement = 1 << iota
	requireCompletion
)

// Load は環境変数と設定ファイルからConfigを読み込む。
// 必須項目が未設定の場合は、不足している項目をまとめてエラーとして返す。
func Load() (*Config, error) {
	return load(requireStorage | requireCompletion)
}

// LoadForStorage はテキスト生成の設定を必須としない読み込みを行う。
// migrate、workerなど生成を行わないコマンドで使用する。
func LoadForStorage() (*Config, error) {
	return load(requireStorage)
}

// LoadForGeneration はストレージの設定を必須としない読み込みを行う。
// 保存を行わないgenerateコマンドで使用する。
func LoadForGeneration() (*Config, error) {
	return load(requireCompletion)
}

func load(req requirement) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	// 設定ファイルは任意（環境変数のみでも動作する）
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		StorageBackend:    strings.ToLower(v.GetString("storage_backend")),
		DatabaseURL:       v.GetString("database_url"),
		SurrealDBURL:      v.GetString("surrealdb_url"),
		SurrealDBNS:       v.GetString("surrealdb_namespace"),
		SurrealDBDatabase: v.GetString("surrealdb_database"),
		SurrealDBUser:     v.GetString("surrealdb_user"),
		SurrealDBPass:     v.GetString("surrealdb_pass"),

		CompletionProvider:    strings.ToLower(v.GetString("completion_provider")),
		CompletionAPIKey:      v.GetString("completion_api_key"),
		CompletionModel:       v.GetString("completion_model"),
		CompletionBaseURL:     v.GetString("completion_base_url"),
		CompletionTemperature: v.GetFloat64("completion_temperature"),
		CompletionMaxTokens:   v.GetInt("completion_max_tokens"),
		CompletionTimeout:     v.GetDuration("completion_timeout"),

		RateLimitGeneral:  v.GetInt("rate_limit_general"),
		RateLimitGenerate: v.GetInt("rate_limit_generate"),

		ServerPort:  v.GetString("server_port"),
		MetricsPort: v.GetString("metrics_port"),

		CookieSecure: v.GetBool("cookie_secure"),
		CookieDomain: v.GetString("cookie_domain"),

		CORSAllowedOrigin: v.GetString("cors_allowed_origin"),
		LogLevel:          v.GetString("log_level"),

		SessionCleanupInterval: v.GetDuration("session_cleanup_interval"),

		DevSessionToken: v.GetString("dev_session_token"),
		DevUserID:       v.GetString("dev_user_id"),
	}

	if err := validate(cfg, req); err != nil {
		return nil, err
	}

	locale, err := language.Parse(v.GetString("collation_locale"))
	if err != nil {
		return nil, fmt.Errorf("invalid COLLATION_LOCALE: %w", err)
	}
	cfg.CollationLocale = locale

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage_backend", StorageBackendPostgres)
	v.SetDefault("surrealdb_namespace", "ideation")
	v.SetDefault("surrealdb_database", "ideation")

	v.SetDefault("completion_provider", "openai")
	v.SetDefault("completion_temperature", 0.8)
	v.SetDefault("completion_max_tokens", 2000)
	v.SetDefault("completion_timeout", 60*time.Second)

	v.SetDefault("rate_limit_general", 120)
	v.SetDefault("rate_limit_generate", 10)

	v.SetDefault("server_port", "8080")
	v.SetDefault("metrics_port", "9090")

	v.SetDefault("cookie_secure", false)
	v.SetDefault("cors_allowed_origin", "http://localhost:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_cleanup_interval", time.Hour)
	v.SetDefault("dev_user_id", "dev-user")
	v.SetDefault("collation_locale", "en")
}

func validate(cfg *Config, req requirement) error {
	var missing []string

	if req&requireStorage != 0 {
		switch cfg.StorageBackend {
		case StorageBackendPostgres:
			if cfg.DatabaseURL == "" {
				missing = append(missing, "DATABASE_URL")
			}
		case StorageBackendSurrealDB:
			if cfg.SurrealDBURL == "" {
				missing = append(missing, "SURREALDB_URL")
			}
		case StorageBackendMemory:
		default:
			return fmt.Errorf("unknown STORAGE_BACKEND: %q", cfg.StorageBackend)
		}
	}

	if req&requireCompletion != 0 {
		switch cfg.CompletionProvider {
		case "openai", "gemini":
		default:
			return fmt.Errorf("unknown COMPLETION_PROVIDER: %q", cfg.CompletionProvider)
		}
		if cfg.CompletionAPIKey == "" {
			missing = append(missing, "COMPLETION_API_KEY")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitGenerate <= 0 {
		return fmt.Errorf("rate limits must be positive: general=%d generate=%d", cfg.RateLimitGeneral, cfg.RateLimitGenerate)
	}
	return nil
}
