package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	DbHost      string
	DbPort      string
	DbUser      string
	DbPass      string
	DbName      string
	DbSSLMode   string
	AutoMigrate bool

	JWTSecret string
	JWTExpire string // 30d, 12h, 45m

	MaxFileUpload  int64 // байты
	FileUploadPath string
	MediaStorePath string
	MediaMaxUpload int64

	RedisURL           string
	RateLimitPerMinute int
	SentryDSN          string
	CORSOrigins        []string

	Log      string
	LogLevel string
	Env      string // dev|prod

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string

	FrontendURL string

	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	maxUpload, err := parseInt64(def(os.Getenv("MAX_FILE_UPLOAD"), "1000000"))
	if err != nil {
		return nil, fmt.Errorf("MAX_FILE_UPLOAD: %w", err)
	}
	mediaMax, err := parseInt64(def(os.Getenv("MEDIA_MAX_UPLOAD"), "5242880"))
	if err != nil {
		return nil, fmt.Errorf("MEDIA_MAX_UPLOAD: %w", err)
	}
	rpm, err := strconv.Atoi(def(os.Getenv("RATE_LIMIT_PER_MINUTE"), "10"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(def(os.Getenv("AUTO_MIGRATE"), "true"))
	if err != nil {
		return nil, fmt.Errorf("AUTO_MIGRATE: %w", err)
	}

	cfg := &Config{
		Port:        def(os.Getenv("PORT"), "5000"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DbHost:      os.Getenv("DB_HOST"),
		DbPort:      def(os.Getenv("DB_PORT"), "5432"),
		DbUser:      os.Getenv("DB_USER"),
		DbPass:      os.Getenv("DB_PASSWORD"),
		DbName:      os.Getenv("DB_NAME"),
		DbSSLMode:   def(os.Getenv("DB_SSLMODE"), "disable"),
		AutoMigrate: autoMigrate,

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpire: def(os.Getenv("JWT_EXPIRE"), "30d"),

		MaxFileUpload:  maxUpload,
		FileUploadPath: def(os.Getenv("FILE_UPLOAD_PATH"), "./public/uploads"),
		MediaStorePath: def(os.Getenv("MEDIA_STORE_PATH"), "data/media.json"),
		MediaMaxUpload: mediaMax,

		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		RateLimitPerMinute: rpm,
		SentryDSN:          strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		CORSOrigins:        splitList(def(os.Getenv("CORS_ORIGINS"), "*")),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     def(os.Getenv("SMTP_PORT"), "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		FrontendURL: strings.TrimRight(def(os.Getenv("FRONTEND_URL"), "http://localhost:5000"), "/"),

		AdminEmail:    strings.ToLower(def(os.Getenv("ADMIN_EMAIL"), "admin@jiangnan.com")),
		AdminName:     def(os.Getenv("ADMIN_NAME"), "管理员"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	if c.DatabaseURL == "" && (c.DbHost == "" || c.DbUser == "" || c.DbName == "") {
		return nil, fmt.Errorf("incomplete DB config (DATABASE_URL or DB_HOST/DB_USER/DB_NAME)")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	if _, err := c.TokenTTL(); err != nil {
		return nil, err
	}
	if c.MaxFileUpload <= 0 || c.MediaMaxUpload <= 0 {
		return nil, fmt.Errorf("upload limits must be positive")
	}

	if c.RedisURL == "" {
		warnings = append(warnings, "REDIS_URL is empty: logout revocation and rate limiting are disabled")
	}
	if c.SMTPHost == "" || c.SMTPUser == "" {
		warnings = append(warnings, "SMTP is not fully configured")
	}
	if c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is empty, initial admin will not be created")
	}

	return warnings, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development" || c.Env == "test"
}

// TokenTTL разбирает JWT_EXPIRE. Помимо форматов time.ParseDuration понимает суффикс "d".
func (c *Config) TokenTTL() (time.Duration, error) {
	return ParseTTL(c.JWTExpire)
}

func ParseTTL(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid JWT_EXPIRE %q", v)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid JWT_EXPIRE %q", v)
	}
	return d, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	if c.DatabaseURL != "" {
		return maskURLPassword(c.DatabaseURL)
	}
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

func maskURLPassword(raw string) string {
	scheme := strings.Index(raw, "://")
	at := strings.LastIndex(raw, "@")
	if scheme < 0 || at < scheme {
		return raw
	}
	creds := raw[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return raw[:scheme+3] + creds[:i] + ":***" + raw[at:]
	}
	return raw
}

func parseInt64(v string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
