package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Authority
	AuthoritySecretKey string
	AuthorityBaseURL   string
	AuthorityTimeout   time.Duration

	// Session
	SessionMaxAge int
	CookieDomain  string

	// Rate Limit
	RateLimitGeneral int
	RateLimitAuth    int

	// Server
	ServerPort string
	DeployEnv  string

	// CORS
	CORSAllowedOrigin string
}

// Production は本番環境へのデプロイかどうかを返す。
func (c *Config) Production() bool {
	return c.DeployEnv == "production"
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// 本番環境ではCOOKIE_DOMAINも必須になる。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.AuthoritySecretKey = os.Getenv("AUTHORITY_SECRET_KEY")
	if cfg.AuthoritySecretKey == "" {
		missing = append(missing, "AUTHORITY_SECRET_KEY")
	}

	cfg.DeployEnv = getEnvString("DEPLOY_ENV", "development")
	cfg.CookieDomain = os.Getenv("COOKIE_DOMAIN")
	if cfg.Production() && cfg.CookieDomain == "" {
		missing = append(missing, "COOKIE_DOMAIN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AuthorityBaseURL = getEnvString("AUTHORITY_BASE_URL", "")
	cfg.AuthorityTimeout = getEnvDuration("AUTHORITY_TIMEOUT", 10*time.Second)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "3000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
