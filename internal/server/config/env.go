package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration from WTB_* environment variables. These
// are typically populated from a .env file loaded in main. Unset variables
// leave the corresponding Config field untouched; malformed numeric values
// are ignored rather than fatal, so a broken .env cannot take the bot down.
func parseEnv(config *Config) {
	if v := os.Getenv("WTB_TELEGRAM_TOKEN"); v != "" {
		config.TelegramToken = v
	}
	if v := os.Getenv("WTB_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("WTB_HTTP_ADDR"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("WTB_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("WTB_ADMIN_LOGIN"); v != "" {
		config.AdminLogin = v
	}
	if v := os.Getenv("WTB_ADMIN_PASSWORD_HASH"); v != "" {
		config.AdminPasswordHash = v
	}
	if v := os.Getenv("WTB_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SweepInterval = d
		}
	}
	if v := os.Getenv("WTB_MATCH_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MatchAttempts = n
		}
	}
	config.DevelopmentMode = config.DevelopmentMode || os.Getenv("WTB_DEVELOPMENT_MODE") == "1"
}
