package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/foodieland/foodieland-api/internal/logging"
	"github.com/foodieland/foodieland-api/internal/transport/mail"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	SessionTTL      time.Duration
	GoogleAudience  string
	AllowOrigins    []string
	FrontendBaseURL string
	ShutdownTimeout time.Duration
	SwaggerSpec     string
	TrustedProxies  []string

	Log logging.Config

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketProfile string
	MinIOBucketRecipes string
	MinIOBucketBlog    string
	MinIOPublicURL     string
	ImageMaxBytes      int64

	SMTP mail.Config

	RateLimitMaxAttempts int
	RateLimitWindow      time.Duration

	SnowflakeNode int64
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      duration("SESSION_TTL", 24*time.Hour),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    origins(getenv("ALLOW_ORIGINS", "*")),
		FrontendBaseURL: getenv("FRONTEND_BASE_URL", ""),
		ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SwaggerSpec:     getenv("SWAGGER_SPEC", "docs/swagger.yaml"),
		TrustedProxies:  splitAndTrim(getenv("TRUSTED_PROXIES", "")),

		Log: logging.Config{
			Level:          getenv("LOG_LEVEL", "info"),
			Dev:            getenv("LOG_DEV", "") == "1",
			File:           getenv("LOG_FILE", ""),
			FileMaxSizeMB:  integer("LOG_FILE_MAX_SIZE_MB", 100),
			FileMaxAgeDays: integer("LOG_FILE_MAX_AGE_DAYS", 28),
			FileMaxBackups: integer("LOG_FILE_MAX_BACKUPS", 5),
			FileCompress:   getenv("LOG_FILE_COMPRESS", "false") == "true",
			LogstashAddr:   getenv("LOGSTASH_TCP_ADDR", ""),
		},

		MinIOEndpoint:      must("MINIO_ENDPOINT"),
		MinIOAccessKey:     must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:     must("MINIO_SECRET_KEY"),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketProfile: getenv("MINIO_BUCKET_PROFILE", "foodieland-profiles"),
		MinIOBucketRecipes: getenv("MINIO_BUCKET_RECIPES", "foodieland-recipes"),
		MinIOBucketBlog:    getenv("MINIO_BUCKET_BLOG", "foodieland-blog"),
		MinIOPublicURL:     getenv("MINIO_PUBLIC_URL", ""),
		ImageMaxBytes:      int64(integer("IMAGE_MAX_BYTES", 2*1024*1024)),

		SMTP: mail.Config{
			Host:        getenv("SMTP_HOST", ""),
			Port:        integer("SMTP_PORT", 587),
			Username:    getenv("SMTP_USERNAME", ""),
			Password:    getenv("SMTP_PASSWORD", ""),
			From:        getenv("SMTP_FROM", ""),
			UseTLS:      getenv("SMTP_USE_TLS", "false") == "true",
			MaxConns:    integer("SMTP_MAX_CONNS", 4),
			SendTimeout: duration("SMTP_SEND_TIMEOUT", 10*time.Second),
		},

		RateLimitMaxAttempts: integer("RATE_LIMIT_MAX_ATTEMPTS", 5),
		RateLimitWindow:      duration("RATE_LIMIT_WINDOW", time.Minute),

		SnowflakeNode: int64(integer("SNOWFLAKE_NODE", 1)),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func origins(input string) []string {
	if out := splitAndTrim(input); len(out) > 0 {
		return out
	}
	return []string{"*"}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func integer(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func duration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
