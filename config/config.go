package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	FrontendURL string
	// Site identity used in rendered subjects/bodies. When empty, the
	// request host is used instead.
	SiteName string
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string // Envelope sender; must be a verified address
	// Default recipients for contact messages (comma-separated in env)
	ContactRecipients []string
	// Template overrides; empty means the built-in defaults
	SubjectTemplate string
	BodyTemplate    string
	// Akismet spam classification (optional)
	AkismetAPIKey  string
	AkismetSiteURL string
	// reCAPTCHA challenge verification (optional)
	RecaptchaSiteKey   string
	RecaptchaSecretKey string
	RecaptchaLang      string
	// Redis Configuration (rate limiting)
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitContactRequests int
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally, ignored in production if absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		SiteName:    getEnv("SITE_NAME", ""),
		// SMTP Configuration
		SMTPHost:          getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:     getEnv("SMTP_FROM_EMAIL", "noreply@localhost"),
		ContactRecipients: splitList(getEnv("CONTACT_RECIPIENTS", "")),
		// Templates
		SubjectTemplate: getEnv("CONTACT_SUBJECT_TEMPLATE", ""),
		BodyTemplate:    getEnv("CONTACT_BODY_TEMPLATE", ""),
		// Akismet (optional - spam check disabled when unset)
		AkismetAPIKey:  getEnv("AKISMET_API_KEY", ""),
		AkismetSiteURL: getEnv("AKISMET_BLOG_URL", ""),
		// reCAPTCHA (optional - challenge disabled when unset)
		RecaptchaSiteKey:   getEnv("RECAPTCHA_SITE_KEY", ""),
		RecaptchaSecretKey: getEnv("RECAPTCHA_SECRET_KEY", ""),
		RecaptchaLang:      getEnv("RECAPTCHA_LANG", ""),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitContactRequests: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),
	}

	if len(cfg.ContactRecipients) == 0 {
		log.Println("WARNING: CONTACT_RECIPIENTS is missing. Contact form will be unavailable.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// splitList splits a comma-separated env value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
