package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries every knob the service needs, read once at startup and
// passed explicitly into each adapter constructor. Nothing reads the
// environment after FromEnv returns.
type Config struct {
	Port          string
	DatabasePath  string
	JWTSecret     string
	JWTExpireDays int
	ClientOrigin  string

	FirebaseDatabaseURL     string
	FirebaseCredentialsFile string
	DefaultOwnerID          string

	StripeSecretKey     string
	StripeWebhookSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSecure   *bool // nil means "decide by port"
	MailFrom     string
	MailReplyTo  string

	AppURL          string
	ReminderEnabled *bool // nil means "follow mailer availability"

	AdminEmail    string
	AdminPassword string
}

// FromEnv builds a Config from environment variables with development
// defaults matching a local stack.
func FromEnv() Config {
	return Config{
		Port:          envOrDefault("PORT", "4000"),
		DatabasePath:  envOrDefault("DATABASE_PATH", "rentiq.db"),
		JWTSecret:     envOrDefault("JWT_SECRET", "rentiq_dev_secret"),
		JWTExpireDays: envInt("JWT_EXPIRE_DAYS", 7),
		ClientOrigin:  envOrDefault("CLIENT_ORIGIN", "http://localhost:3000"),

		FirebaseDatabaseURL:     os.Getenv("FIREBASE_DATABASE_URL"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		DefaultOwnerID:          envOrDefault("DEFAULT_OWNER_ID", "admin-1"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPSecure:   envBool("SMTP_SECURE"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailReplyTo:  os.Getenv("MAIL_REPLY_TO"),

		AppURL:          envOrDefault("APP_URL", "http://localhost:3000"),
		ReminderEnabled: envBool("REMINDER_ENABLED"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// MailerConfigured reports whether an SMTP relay is available at all.
func (c Config) MailerConfigured() bool {
	return c.SMTPHost != ""
}

// ReminderActive reports whether scheduled reminder delivery should run.
// Unset REMINDER_ENABLED follows mailer availability.
func (c Config) ReminderActive() bool {
	if c.ReminderEnabled == nil {
		return c.MailerConfigured()
	}
	return *c.ReminderEnabled
}

// AllowedOrigins splits CLIENT_ORIGIN as a CSV list for CORS.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, item := range strings.Split(c.ClientOrigin, ",") {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envBool returns nil when the variable is unset or unrecognized, so callers
// can distinguish "explicitly off" from "not specified".
func envBool(key string) *bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		b := true
		return &b
	case "0", "false", "no", "off":
		b := false
		return &b
	default:
		return nil
	}
}
