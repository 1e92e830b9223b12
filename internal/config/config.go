package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	MinIO MinIOConfig
	CORS  CORSConfig
	SMTP  SMTPConfig
	Demo  DemoConfig
}

type AppConfig struct {
	Env  string
	Port string
	// PublicBaseURL is the externally visible URL watch links are built from
	PublicBaseURL string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string.
// Everything is stored and compared in UTC; mixed local/UTC handling of
// expiry timestamps caused real bugs before.
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=UTC"
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// VideoObject is the object key of the demo video inside the bucket
	VideoObject string
	UseSSL      bool
}

type CORSConfig struct {
	Origins []string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// DemoConfig holds the access-token lifecycle knobs and video settings
type DemoConfig struct {
	OTPExpiry      time.Duration // validity window of a verification code
	OTPMaxAttempts int
	OTPResendLimit int           // max codes per lead per hour
	LinkTTL        time.Duration // demo link validity from creation
	LinkMaxViews   int
	LeadViewCap    int // cumulative views allowed per lead across all links
	VideoEmbedURL  string
	VideoPassword  string // set when the hosted video is password protected
	AdminAlertTo   string // receives abandoned-demo notifications
	StreamExpiry   time.Duration
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading from environment variables")
	}

	jwtExpiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "12h"))
	if err != nil {
		jwtExpiry = 12 * time.Hour
	}

	return &Config{
		App: AppConfig{
			Env:           getEnv("APP_ENV", "development"),
			Port:          getEnv("APP_PORT", "8080"),
			PublicBaseURL: getEnv("APP_PUBLIC_URL", "http://localhost:8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "demoaccess"),
			Password: getEnv("DB_PASSWORD", "demoaccess"),
			Name:     getEnv("DB_NAME", "demoaccess"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-secret"),
			Expiry: jwtExpiry,
		},
		MinIO: MinIOConfig{
			Endpoint:    getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:   getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:   getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:      getEnv("MINIO_BUCKET", "demo-media"),
			VideoObject: getEnv("MINIO_VIDEO_OBJECT", "demo/product-walkthrough.mp4"),
			UseSSL:      getEnv("MINIO_USE_SSL", "false") == "true",
		},
		CORS: CORSConfig{
			Origins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "mailpit"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@demoaccess.local"),
			FromName: getEnv("SMTP_FROM_NAME", "ThemeStore Demo Access"),
		},
		Demo: DemoConfig{
			OTPExpiry:      time.Duration(getEnvInt("OTP_EXPIRY_SECONDS", 600)) * time.Second,
			OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 3),
			OTPResendLimit: getEnvInt("OTP_RESEND_LIMIT", 3),
			LinkTTL:        time.Duration(getEnvInt("DEMO_LINK_TTL_MINUTES", 60)) * time.Minute,
			LinkMaxViews:   getEnvInt("DEMO_LINK_MAX_VIEWS", 2),
			LeadViewCap:    getEnvInt("DEMO_LEAD_VIEW_CAP", 2),
			VideoEmbedURL:  getEnv("DEMO_VIDEO_EMBED_URL", ""),
			VideoPassword:  getEnv("DEMO_VIDEO_PASSWORD", ""),
			AdminAlertTo:   getEnv("DEMO_ADMIN_ALERT_EMAIL", ""),
			StreamExpiry:   time.Duration(getEnvInt("DEMO_STREAM_EXPIRY_MINUTES", 15)) * time.Minute,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
