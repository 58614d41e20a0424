package config

import (
	"time"
)

type VerificationConfig struct {
	Enabled       bool          `yaml:"enabled"`
	ServiceURL    string        `yaml:"service_url"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout"`
	Workers       int           `yaml:"workers"`
	QueueSize     int           `yaml:"queue_size"`
	MaxAttempts   int           `yaml:"max_attempts"`
	StaleAfter    time.Duration `yaml:"stale_after"`
	RetrySchedule string        `yaml:"retry_schedule"`
	WebhookSecret string        `yaml:"webhook_secret"`
}

func loadVerificationConfig() *VerificationConfig {
	return &VerificationConfig{
		Enabled:       getEnvAsBool("VERIFICATION_ENABLED", true),
		ServiceURL:    getEnv("VERIFICATION_SERVICE_URL", ""),
		APIKey:        getEnv("VERIFICATION_API_KEY", ""),
		Timeout:       getEnvAsDuration("VERIFICATION_TIMEOUT", 60*time.Second),
		Workers:       getEnvAsInt("VERIFICATION_WORKERS", 2),
		QueueSize:     getEnvAsInt("VERIFICATION_QUEUE_SIZE", 100),
		MaxAttempts:   getEnvAsInt("VERIFICATION_MAX_ATTEMPTS", 3),
		StaleAfter:    getEnvAsDuration("VERIFICATION_STALE_AFTER", 30*time.Minute),
		RetrySchedule: getEnv("VERIFICATION_RETRY_SCHEDULE", "0 */10 * * * *"),
		WebhookSecret: getEnv("VERIFICATION_WEBHOOK_SECRET", ""),
	}
}
