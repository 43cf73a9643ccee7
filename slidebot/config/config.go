package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SlackBotToken string
	SlackAppToken string
	SlackDebug    bool

	AllowedChannels []string
	SlideHost       string
	ImageSize       int

	WorkDir          string
	HTTPTimeout      time.Duration
	FetchConcurrency int
	ScrapeRenderer   string

	UploadBackend  string
	UploadEndpoint string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOSecure    bool
	PresignExpiry  time.Duration

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	JWTSecret  string
	HTTPAddr   string
	CardConfig string
	LogDir     string
}

const (
	RendererHTTP       = "http"
	RendererPlaywright = "playwright"

	UploadFileHost = "filehost"
	UploadMinIO    = "minio"
)

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() Config {
	// a missing .env is normal in containers
	_ = godotenv.Load()

	return Config{
		SlackBotToken: getEnv("SLACK_BOT_TOKEN", ""),
		SlackAppToken: getEnv("SLACK_APP_TOKEN", ""),
		SlackDebug:    getEnvBool("SLACK_DEBUG", false),

		AllowedChannels: getEnvList("ALLOWED_CHANNELS"),
		SlideHost:       getEnv("SLIDE_HOST", "www.slideshare.net"),
		ImageSize:       getEnvInt("SLIDE_IMAGE_SIZE", 2048),

		WorkDir:          getEnv("WORK_DIR", filepath.Join(os.TempDir(), "slidebot")),
		HTTPTimeout:      getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 0),
		ScrapeRenderer:   getEnv("SCRAPE_RENDERER", RendererHTTP),

		UploadBackend:  getEnv("UPLOAD_BACKEND", UploadFileHost),
		UploadEndpoint: getEnv("UPLOAD_ENDPOINT", "https://file.io/"),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "slidebot"),
		MinIOSecure:    getEnvBool("MINIO_SECURE", false),
		PresignExpiry:  getEnvDuration("PRESIGN_EXPIRY", 24*time.Hour),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", ""),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		HTTPAddr:   getEnv("HTTP_ADDR", ":8000"),
		CardConfig: getEnv("CARD_CONFIG", ""),
		LogDir:     getEnv("LOG_DIR", "./logs"),
	}
}

// HistoryEnabled reports whether a database is configured for run history.
func (c Config) HistoryEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
