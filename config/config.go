package config

import (
	"os"
	"strconv"
)

// Version reported by GET /health.
const Version = "1.0.0"

type Config struct {
	Port        string
	AppEnv      string // "development" or "production"
	DatabaseDSN string
	FrontendURL string

	JWTSecret        string
	JWTRefreshSecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

func Load() Config {
	return Config{
		Port:             GetEnv("PORT", "3333"),
		AppEnv:           GetEnv("APP_ENV", "development"),
		DatabaseDSN:      GetEnv("DATABASE_DSN", "root:@tcp(127.0.0.1:3306)/crm?charset=utf8mb4&parseTime=True&loc=Local"),
		FrontendURL:      GetEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:        GetEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTRefreshSecret: GetEnv("JWT_REFRESH_SECRET", "dev-refresh-secret-change-me"),
		SMTPHost:         GetEnv("SMTP_HOST", ""),
		SMTPPort:         GetEnvAsInt("SMTP_PORT", 587),
		SMTPUser:         GetEnv("SMTP_USER", ""),
		SMTPPass:         GetEnv("SMTP_PASS", ""),
		MailFrom:         GetEnv("MAIL_FROM", "noreply@crm.local"),
	}
}

func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// Helper function to get environment variable with fallback default value
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get environment variable as integer with fallback
func GetEnvAsInt(key string, fallback int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
